package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mintworks/ipasset-sdk-go/pkg/model"
)

// Backend adapts an EVMClient plus signing key into the context-based chain
// surface the registration strategies consume. All methods submit and return
// immediately; confirmation is a separate WaitMined call so callers control
// the fire-and-forget vs. wait-for-confirmation choice.
type Backend struct {
	evm         *EVMClient
	prvKey      *ecdsa.PrivateKey
	signer      common.Address
	receiptWait time.Duration
}

// NewBackend wires a Backend around an initialized EVM client. receiptWait
// bounds the exponential backoff of WaitMined; zero means unbounded backoff
// growth (the context still limits total waiting).
func NewBackend(evm *EVMClient, prvKey *ecdsa.PrivateKey, receiptWait time.Duration) (*Backend, error) {
	addr := GetAddressFromPrivateKeyECDSA(prvKey)
	if addr == nil {
		return nil, errors.New("invalid private key")
	}
	return &Backend{
		evm:         evm,
		prvKey:      prvKey,
		signer:      *addr,
		receiptWait: receiptWait,
	}, nil
}

// SignerAddress returns the address transactions are signed with.
func (b *Backend) SignerAddress() common.Address {
	return b.signer
}

// CreateCollection submits a createCollection transaction.
func (b *Backend) CreateCollection(ctx context.Context, p model.CollectionParams) (*types.Transaction, error) {
	opts, err := b.evm.GetTransactOpts(ctx, b.prvKey)
	if err != nil {
		return nil, err
	}
	feeRecipient := p.FeeRecipient
	if feeRecipient == (common.Address{}) {
		feeRecipient = b.signer
	}
	return b.evm.Workflows.CreateCollection(opts, p.Name, p.Symbol, p.IsPublicMinting, p.MintOpen, feeRecipient, p.ContractURI)
}

// MintToken submits a mint transaction on the given collection, carrying the
// pinned NFT metadata URI and hash.
func (b *Backend) MintToken(ctx context.Context, collection, to common.Address, nftMetadata model.PinnedMetadata) (*types.Transaction, error) {
	opts, err := b.evm.GetTransactOpts(ctx, b.prvKey)
	if err != nil {
		return nil, err
	}
	hash, err := nftMetadata.Hash.Bytes32()
	if err != nil {
		return nil, err
	}
	return NewSPGNFTCollection(collection, b.evm.Client).Mint(opts, to, nftMetadata.URI, hash)
}

// RegisterIP submits a registerIp transaction for an already-minted token.
func (b *Backend) RegisterIP(ctx context.Context, collection common.Address, tokenID *big.Int, req *model.RegistrationRequest) (*types.Transaction, error) {
	opts, err := b.evm.GetTransactOpts(ctx, b.prvKey)
	if err != nil {
		return nil, err
	}
	ipMeta, terms, err := contractParams(req)
	if err != nil {
		return nil, err
	}
	return b.evm.Workflows.RegisterIp(opts, collection, tokenID, ipMeta, terms)
}

// MintAndRegisterIP submits the single-transaction mint-and-register call.
func (b *Backend) MintAndRegisterIP(ctx context.Context, collection common.Address, req *model.RegistrationRequest) (*types.Transaction, error) {
	opts, err := b.evm.GetTransactOpts(ctx, b.prvKey)
	if err != nil {
		return nil, err
	}
	ipMeta, terms, err := contractParams(req)
	if err != nil {
		return nil, err
	}
	recipient := req.Recipient
	if recipient == (common.Address{}) {
		recipient = b.signer
	}
	return b.evm.Workflows.MintAndRegisterIp(opts, collection, recipient, ipMeta, terms)
}

// WaitMined blocks until the transaction is confirmed or ctx expires.
func (b *Backend) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return b.evm.WaitForTransaction(ctx, txHash, b.receiptWait)
}

// CollectionFromReceipt decodes the created collection address from a
// createCollection receipt.
func (b *Backend) CollectionFromReceipt(receipt *types.Receipt) (common.Address, error) {
	ev, err := b.evm.Workflows.ParseCollectionCreated(receipt)
	if err != nil {
		return common.Address{}, err
	}
	return ev.SpgNftContract, nil
}

// TokenFromReceipt decodes the minted token ID from a mint receipt.
func (b *Backend) TokenFromReceipt(receipt *types.Receipt, collection common.Address) (*big.Int, error) {
	return NewSPGNFTCollection(collection, b.evm.Client).ParseMintedToken(receipt)
}

// AssetFromReceipt decodes the registered asset identifier and token ID from a
// registration receipt.
func (b *Backend) AssetFromReceipt(receipt *types.Receipt) (common.Address, *big.Int, error) {
	ev, err := b.evm.Workflows.ParseIPRegistered(receipt)
	if err != nil {
		return common.Address{}, nil, err
	}
	return ev.IpId, ev.TokenId, nil
}

// contractParams converts the request's pinned metadata and license terms into
// their on-chain tuple forms.
func contractParams(req *model.RegistrationRequest) (IPMetadataParams, LicenseTermsParams, error) {
	ipHash, err := req.IPMetadata.Hash.Bytes32()
	if err != nil {
		return IPMetadataParams{}, LicenseTermsParams{}, err
	}
	nftHash, err := req.NFTMetadata.Hash.Bytes32()
	if err != nil {
		return IPMetadataParams{}, LicenseTermsParams{}, err
	}

	mintingFee := req.Terms.MintingFee
	if mintingFee == nil {
		mintingFee = big.NewInt(0)
	}

	return IPMetadataParams{
			IpMetadataURI:   req.IPMetadata.URI,
			IpMetadataHash:  ipHash,
			NftMetadataURI:  req.NFTMetadata.URI,
			NftMetadataHash: nftHash,
		}, LicenseTermsParams{
			Transferable:       req.Terms.Transferable,
			CommercialUse:      req.Terms.CommercialUse,
			CommercialRevShare: req.Terms.CommercialRevShare,
			MintingFee:         mintingFee,
			Currency:           req.Terms.Currency,
			Uri:                req.Terms.URI,
		}, nil
}
