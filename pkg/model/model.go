package model

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ContentHash is the hex-encoded SHA-256 digest (64 characters, no prefix) of
// a metadata record's canonical JSON serialization.
type ContentHash string

// Bytes32 returns the digest as a [32]byte for on-chain submission.
// It fails if the hash is not exactly 32 hex-encoded bytes.
func (h ContentHash) Bytes32() ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(string(h))
	if err != nil {
		return out, fmt.Errorf("invalid content hash %q: %w", h, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("invalid content hash length %d, want 32", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// LicenseTerms is the licensing policy attached at registration time. The
// zero value attaches no commercial rights, which the remote platform treats
// as a non-commercial default.
type LicenseTerms struct {
	Transferable       bool           `json:"transferable"`
	CommercialUse      bool           `json:"commercialUse"`
	CommercialRevShare uint32         `json:"commercialRevShare"` // basis points, 10000 = 100%
	MintingFee         *big.Int       `json:"mintingFee"`         // wei of the fee currency
	Currency           common.Address `json:"currency"`
	URI                string         `json:"uri,omitempty"`
}

// CollectionParams describes a new minting-enabled collection for the
// create-collection registration path.
type CollectionParams struct {
	Name            string
	Symbol          string
	IsPublicMinting bool
	MintOpen        bool
	FeeRecipient    common.Address
	ContractURI     string
}

// PinnedMetadata couples the retrieval URI of a pinned metadata record with
// the content hash the remote contract verifies it against.
type PinnedMetadata struct {
	URI  string
	Hash ContentHash
}

// RegistrationRequest carries everything a registration strategy needs: the
// token source (an existing collection for mint-then-register, or parameters
// for a fresh collection), the two pinned metadata records, the license terms
// and the wait preference.
type RegistrationRequest struct {
	// Collection is the deployed collection contract to mint on. Used by the
	// mint-then-register path; ignored when NewCollection is set.
	Collection common.Address
	// NewCollection, when non-nil, requests creation of a fresh collection
	// before minting (create-collection path).
	NewCollection *CollectionParams
	// Recipient receives the minted token. Defaults to the signer address.
	Recipient common.Address

	IPMetadata  PinnedMetadata
	NFTMetadata PinnedMetadata
	Terms       LicenseTerms

	// WaitForConfirmation blocks the call until the ledger confirms the
	// transaction. When false the call returns a pending transaction hash and
	// the asset/token identifiers may not yet be valid.
	WaitForConfirmation bool
}

// RegistrationResult is the outcome of a registration call. TxHash is always
// populated; IPAssetID and TokenID are decoded from receipt events and are
// only meaningful when Confirmed is true.
type RegistrationResult struct {
	TxHash     common.Hash
	IPAssetID  common.Address
	TokenID    *big.Int
	Collection common.Address
	Confirmed  bool
}
