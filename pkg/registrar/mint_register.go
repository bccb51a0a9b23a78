package registrar

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/mintworks/ipasset-sdk-go/pkg/model"
)

// MintRegisterStrategy registers an IP asset in two ledger operations: mint an
// NFT on a caller-specified, already-deployed collection, then register the
// minted token. The mint is always confirmed before registering, since the
// registration call needs the minted token ID; the wait flag governs only the
// final registration transaction.
type MintRegisterStrategy struct {
	chain ChainBackend
}

// NewMintRegisterStrategy constructs the mint-then-register path on the given
// chain backend.
func NewMintRegisterStrategy(chain ChainBackend) *MintRegisterStrategy {
	return &MintRegisterStrategy{chain: chain}
}

// Register mints and then registers. Mint failures wrap ErrMint; registration
// failures wrap ErrRegistration. A registration failure leaves the minted
// token in place; the returned error reports the token so the caller can
// resume manually.
func (s *MintRegisterStrategy) Register(ctx context.Context, req *model.RegistrationRequest) (*model.RegistrationResult, error) {
	if req.Collection == (common.Address{}) {
		return nil, fmt.Errorf("%w: collection address is required", ErrMint)
	}

	recipient := req.Recipient
	if recipient == (common.Address{}) {
		recipient = s.chain.SignerAddress()
	}

	mintTx, err := s.chain.MintToken(ctx, req.Collection, recipient, req.NFTMetadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMint, err)
	}
	mintReceipt, err := s.chain.WaitMined(ctx, mintTx.Hash())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMint, err)
	}
	tokenID, err := s.chain.TokenFromReceipt(mintReceipt, req.Collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMint, err)
	}

	zap.L().Debug("minted token",
		zap.String("collection", req.Collection.Hex()),
		zap.String("tokenId", tokenID.String()))

	regTx, err := s.chain.RegisterIP(ctx, req.Collection, tokenID, req)
	if err != nil {
		return nil, fmt.Errorf("%w (token %s minted on %s): %v", ErrRegistration, tokenID, req.Collection.Hex(), err)
	}

	result, err := finishRegistration(ctx, s.chain, regTx, req.Collection, tokenID, req.WaitForConfirmation)
	if err != nil {
		return nil, fmt.Errorf("%w (token %s minted on %s): %v", ErrRegistration, tokenID, req.Collection.Hex(), err)
	}
	return result, nil
}
