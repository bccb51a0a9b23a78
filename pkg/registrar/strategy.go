// Package registrar implements the two registration paths for turning a
// minted NFT into a registered IP asset: mint-then-register on an existing
// collection, and create-collection-then-mint-and-register in a single remote
// transaction. Both are variants of one Strategy capability selected by the
// caller and share the same chain surface and error taxonomy.
package registrar

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/mintworks/ipasset-sdk-go/pkg/model"
)

var (
	// ErrMint is wrapped when minting the NFT fails (contract revert or
	// network failure).
	ErrMint = errors.New("mint failed")
	// ErrCollectionCreate is wrapped when creating a new collection fails.
	ErrCollectionCreate = errors.New("collection creation failed")
	// ErrRegistration is wrapped when the registration call fails (contract
	// revert, metadata hash mismatch, or network failure).
	ErrRegistration = errors.New("registration failed")
)

// Strategy is a registration path. Implementations are MintRegisterStrategy
// (mint on an existing collection, then register) and CollectionStrategy
// (create a collection, then mint-and-register atomically).
//
// Register submits the remote calls in order and honors
// req.WaitForConfirmation: when set, it blocks until the ledger confirms the
// final transaction and the result carries the decoded asset and token
// identifiers; otherwise it returns a pending transaction hash immediately.
type Strategy interface {
	Register(ctx context.Context, req *model.RegistrationRequest) (*model.RegistrationResult, error)
}

// ChainBackend is the remote call surface a strategy needs, implemented by
// blockchain.Backend and stubbed in tests.
type ChainBackend interface {
	SignerAddress() common.Address
	CreateCollection(ctx context.Context, p model.CollectionParams) (*types.Transaction, error)
	MintToken(ctx context.Context, collection, to common.Address, nftMetadata model.PinnedMetadata) (*types.Transaction, error)
	RegisterIP(ctx context.Context, collection common.Address, tokenID *big.Int, req *model.RegistrationRequest) (*types.Transaction, error)
	MintAndRegisterIP(ctx context.Context, collection common.Address, req *model.RegistrationRequest) (*types.Transaction, error)
	WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CollectionFromReceipt(receipt *types.Receipt) (common.Address, error)
	TokenFromReceipt(receipt *types.Receipt, collection common.Address) (*big.Int, error)
	AssetFromReceipt(receipt *types.Receipt) (common.Address, *big.Int, error)
}

// ForRequest selects the strategy implied by the request: CollectionStrategy
// when req.NewCollection is set, MintRegisterStrategy otherwise.
func ForRequest(chain ChainBackend, req *model.RegistrationRequest) Strategy {
	if req.NewCollection != nil {
		return NewCollectionStrategy(chain)
	}
	return NewMintRegisterStrategy(chain)
}

// finishRegistration resolves the result of a submitted registration
// transaction, waiting for confirmation and decoding identifiers when
// requested.
func finishRegistration(ctx context.Context, chain ChainBackend, tx *types.Transaction, collection common.Address, tokenID *big.Int, wait bool) (*model.RegistrationResult, error) {
	result := &model.RegistrationResult{
		TxHash:     tx.Hash(),
		Collection: collection,
		TokenID:    tokenID,
	}
	if !wait {
		return result, nil
	}

	receipt, err := chain.WaitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	ipID, evTokenID, err := chain.AssetFromReceipt(receipt)
	if err != nil {
		return nil, err
	}
	result.IPAssetID = ipID
	if evTokenID != nil {
		result.TokenID = evTokenID
	}
	result.Confirmed = true
	return result, nil
}
