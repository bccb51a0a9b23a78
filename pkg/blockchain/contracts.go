package blockchain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// The target platform publishes contract ABIs but no Go module with generated
// bindings, so the bindings here are hand-written around bind.BoundContract,
// covering exactly the methods and events this SDK calls.

const registrationWorkflowsABIJSON = `[
  {"type":"function","name":"createCollection","stateMutability":"nonpayable","inputs":[
    {"name":"name","type":"string"},
    {"name":"symbol","type":"string"},
    {"name":"isPublicMinting","type":"bool"},
    {"name":"mintOpen","type":"bool"},
    {"name":"mintFeeRecipient","type":"address"},
    {"name":"contractURI","type":"string"}],
   "outputs":[{"name":"spgNftContract","type":"address"}]},
  {"type":"function","name":"registerIp","stateMutability":"nonpayable","inputs":[
    {"name":"nftContract","type":"address"},
    {"name":"tokenId","type":"uint256"},
    {"name":"ipMetadata","type":"tuple","components":[
      {"name":"ipMetadataURI","type":"string"},
      {"name":"ipMetadataHash","type":"bytes32"},
      {"name":"nftMetadataURI","type":"string"},
      {"name":"nftMetadataHash","type":"bytes32"}]},
    {"name":"terms","type":"tuple","components":[
      {"name":"transferable","type":"bool"},
      {"name":"commercialUse","type":"bool"},
      {"name":"commercialRevShare","type":"uint32"},
      {"name":"mintingFee","type":"uint256"},
      {"name":"currency","type":"address"},
      {"name":"uri","type":"string"}]}],
   "outputs":[{"name":"ipId","type":"address"}]},
  {"type":"function","name":"mintAndRegisterIp","stateMutability":"nonpayable","inputs":[
    {"name":"spgNftContract","type":"address"},
    {"name":"recipient","type":"address"},
    {"name":"ipMetadata","type":"tuple","components":[
      {"name":"ipMetadataURI","type":"string"},
      {"name":"ipMetadataHash","type":"bytes32"},
      {"name":"nftMetadataURI","type":"string"},
      {"name":"nftMetadataHash","type":"bytes32"}]},
    {"name":"terms","type":"tuple","components":[
      {"name":"transferable","type":"bool"},
      {"name":"commercialUse","type":"bool"},
      {"name":"commercialRevShare","type":"uint32"},
      {"name":"mintingFee","type":"uint256"},
      {"name":"currency","type":"address"},
      {"name":"uri","type":"string"}]},
    {"name":"allowDuplicates","type":"bool"}],
   "outputs":[{"name":"ipId","type":"address"},{"name":"tokenId","type":"uint256"}]},
  {"type":"event","name":"CollectionCreated","anonymous":false,"inputs":[
    {"name":"spgNftContract","type":"address","indexed":true}]},
  {"type":"event","name":"IPRegistered","anonymous":false,"inputs":[
    {"name":"ipId","type":"address","indexed":true},
    {"name":"chainId","type":"uint256","indexed":true},
    {"name":"tokenContract","type":"address","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":false}]}
]`

const spgNFTCollectionABIJSON = `[
  {"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[
    {"name":"to","type":"address"},
    {"name":"nftMetadataURI","type":"string"},
    {"name":"nftMetadataHash","type":"bytes32"},
    {"name":"allowDuplicates","type":"bool"}],
   "outputs":[{"name":"tokenId","type":"uint256"}]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[
    {"name":"from","type":"address","indexed":true},
    {"name":"to","type":"address","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":true}]}
]`

var (
	registrationWorkflowsABI = mustParseABI(registrationWorkflowsABIJSON)
	spgNFTCollectionABI      = mustParseABI(spgNFTCollectionABIJSON)
)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded ABI: %v", err))
	}
	return parsed
}

// IPMetadataParams is the on-chain metadata tuple: the two pinned metadata
// URIs and the content hashes the contract verifies them against.
type IPMetadataParams struct {
	IpMetadataURI   string
	IpMetadataHash  [32]byte
	NftMetadataURI  string
	NftMetadataHash [32]byte
}

// LicenseTermsParams is the on-chain license terms tuple.
type LicenseTermsParams struct {
	Transferable       bool
	CommercialUse      bool
	CommercialRevShare uint32
	MintingFee         *big.Int
	Currency           common.Address
	Uri                string
}

// IPRegisteredEvent mirrors the IPRegistered event emitted when a token is
// registered as an IP asset.
type IPRegisteredEvent struct {
	IpId          common.Address
	ChainId       *big.Int
	TokenContract common.Address
	TokenId       *big.Int
}

// CollectionCreatedEvent mirrors the CollectionCreated event emitted by
// createCollection.
type CollectionCreatedEvent struct {
	SpgNftContract common.Address
}

// TransferEvent mirrors the ERC-721 Transfer event; a mint is a transfer from
// the zero address.
type TransferEvent struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
}

// RegistrationWorkflows binds the platform's registration workflows contract.
type RegistrationWorkflows struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewRegistrationWorkflows binds the contract at addr against the given backend.
func NewRegistrationWorkflows(addr common.Address, backend bind.ContractBackend) *RegistrationWorkflows {
	return &RegistrationWorkflows{
		address:  addr,
		contract: bind.NewBoundContract(addr, registrationWorkflowsABI, backend, backend, backend),
	}
}

// CreateCollection submits a createCollection transaction for a new
// minting-enabled SPG NFT collection.
func (w *RegistrationWorkflows) CreateCollection(opts *bind.TransactOpts, name, symbol string, isPublicMinting, mintOpen bool, mintFeeRecipient common.Address, contractURI string) (*types.Transaction, error) {
	return w.contract.Transact(opts, "createCollection", name, symbol, isPublicMinting, mintOpen, mintFeeRecipient, contractURI)
}

// RegisterIp submits a registerIp transaction for an already-minted token.
func (w *RegistrationWorkflows) RegisterIp(opts *bind.TransactOpts, nftContract common.Address, tokenID *big.Int, ipMetadata IPMetadataParams, terms LicenseTermsParams) (*types.Transaction, error) {
	return w.contract.Transact(opts, "registerIp", nftContract, tokenID, ipMetadata, terms)
}

// MintAndRegisterIp submits the combined mint-and-register transaction; the
// ledger mints a token on spgNftContract and registers it as an IP asset
// atomically.
func (w *RegistrationWorkflows) MintAndRegisterIp(opts *bind.TransactOpts, spgNftContract, recipient common.Address, ipMetadata IPMetadataParams, terms LicenseTermsParams) (*types.Transaction, error) {
	return w.contract.Transact(opts, "mintAndRegisterIp", spgNftContract, recipient, ipMetadata, terms, false)
}

// ParseIPRegistered scans receipt logs for the IPRegistered event and returns
// the first match, or an error when the receipt contains none.
func (w *RegistrationWorkflows) ParseIPRegistered(receipt *types.Receipt) (*IPRegisteredEvent, error) {
	eventID := registrationWorkflowsABI.Events["IPRegistered"].ID
	for _, lg := range receipt.Logs {
		if len(lg.Topics) == 0 || lg.Topics[0] != eventID {
			continue
		}
		ev := new(IPRegisteredEvent)
		if err := w.contract.UnpackLog(ev, "IPRegistered", *lg); err != nil {
			return nil, err
		}
		return ev, nil
	}
	return nil, fmt.Errorf("no IPRegistered event in receipt %s", receipt.TxHash)
}

// ParseCollectionCreated scans receipt logs for the CollectionCreated event.
func (w *RegistrationWorkflows) ParseCollectionCreated(receipt *types.Receipt) (*CollectionCreatedEvent, error) {
	eventID := registrationWorkflowsABI.Events["CollectionCreated"].ID
	for _, lg := range receipt.Logs {
		if len(lg.Topics) == 0 || lg.Topics[0] != eventID {
			continue
		}
		ev := new(CollectionCreatedEvent)
		if err := w.contract.UnpackLog(ev, "CollectionCreated", *lg); err != nil {
			return nil, err
		}
		return ev, nil
	}
	return nil, fmt.Errorf("no CollectionCreated event in receipt %s", receipt.TxHash)
}

// SPGNFTCollection binds a deployed SPG NFT collection contract.
type SPGNFTCollection struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewSPGNFTCollection binds the collection at addr against the given backend.
func NewSPGNFTCollection(addr common.Address, backend bind.ContractBackend) *SPGNFTCollection {
	return &SPGNFTCollection{
		address:  addr,
		contract: bind.NewBoundContract(addr, spgNFTCollectionABI, backend, backend, backend),
	}
}

// Mint submits a mint transaction for a token carrying the given metadata URI
// and hash.
func (c *SPGNFTCollection) Mint(opts *bind.TransactOpts, to common.Address, nftMetadataURI string, nftMetadataHash [32]byte) (*types.Transaction, error) {
	return c.contract.Transact(opts, "mint", to, nftMetadataURI, nftMetadataHash, false)
}

// ParseMintedToken extracts the minted token ID from the ERC-721 Transfer
// event (from the zero address) emitted by this collection.
func (c *SPGNFTCollection) ParseMintedToken(receipt *types.Receipt) (*big.Int, error) {
	eventID := spgNFTCollectionABI.Events["Transfer"].ID
	for _, lg := range receipt.Logs {
		if lg.Address != c.address || len(lg.Topics) == 0 || lg.Topics[0] != eventID {
			continue
		}
		ev := new(TransferEvent)
		if err := c.contract.UnpackLog(ev, "Transfer", *lg); err != nil {
			return nil, err
		}
		if ev.From != (common.Address{}) {
			continue
		}
		return ev.TokenId, nil
	}
	return nil, fmt.Errorf("no mint Transfer event in receipt %s", receipt.TxHash)
}
