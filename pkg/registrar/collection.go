package registrar

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mintworks/ipasset-sdk-go/pkg/model"
)

// CollectionStrategy registers an IP asset by first creating a new
// minting-enabled collection and then minting and registering in one remote
// transaction. The collection creation is always confirmed (its address is
// needed for the second call); the wait flag governs only the combined
// mint-and-register transaction. A failure of the combined call leaves no
// token minted, subject to the remote ledger's own atomicity.
type CollectionStrategy struct {
	chain ChainBackend
}

// NewCollectionStrategy constructs the create-collection path on the given
// chain backend.
func NewCollectionStrategy(chain ChainBackend) *CollectionStrategy {
	return &CollectionStrategy{chain: chain}
}

// Register creates the collection and then mints-and-registers. Collection
// creation failures wrap ErrCollectionCreate; the combined call's failures
// wrap ErrRegistration.
func (s *CollectionStrategy) Register(ctx context.Context, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
	if req.NewCollection == nil {
		return nil, fmt.Errorf("%w: collection parameters are required", ErrCollectionCreate)
	}

	createTx, err := s.chain.CreateCollection(ctx, *req.NewCollection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionCreate, err)
	}
	createReceipt, err := s.chain.WaitMined(ctx, createTx.Hash())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionCreate, err)
	}
	collection, err := s.chain.CollectionFromReceipt(createReceipt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionCreate, err)
	}

	zap.L().Debug("created collection",
		zap.String("name", req.NewCollection.Name),
		zap.String("collection", collection.Hex()))

	regTx, err := s.chain.MintAndRegisterIP(ctx, collection, req)
	if err != nil {
		return nil, fmt.Errorf("%w (collection %s created): %v", ErrRegistration, collection.Hex(), err)
	}

	result, err := finishRegistration(ctx, s.chain, regTx, collection, nil, req.WaitForConfirmation)
	if err != nil {
		return nil, fmt.Errorf("%w (collection %s created): %v", ErrRegistration, collection.Hex(), err)
	}
	return result, nil
}
