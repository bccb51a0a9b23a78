// Package model defines data structures for IP asset registration: the two
// metadata record variants (IP-level and NFT-level), license terms, and the
// registration request/result types. The metadata structs mirror the JSON
// documents pinned to IPFS and referenced on-chain, and carry the canonical
// serialization rule used for content hashing.
package model

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every metadata validation failure (missing
// required fields). Match with errors.Is.
var ErrValidation = errors.New("metadata validation failed")

// Attribute is a single trait of a metadata record, following the common
// NFT attribute convention.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Creator identifies a contributor to the IP and their share.
type Creator struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	ContributionPercent int    `json:"contributionPercent"`
}

// IPMetadata is the IP-level metadata record. Immutable once constructed;
// build it with NewIPMetadata so required fields are checked up front.
type IPMetadata struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CreatedAt   string      `json:"createdAt,omitempty"`
	Watermark   string      `json:"watermarkImg,omitempty"`
	Creators    []Creator   `json:"creators,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

// NFTMetadata is the token-level metadata record (ERC-721 style).
type NFTMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

// IPOption customizes optional IPMetadata fields at construction time.
type IPOption func(*IPMetadata)

// WithCreatedAt sets the creation timestamp (free-form string, usually RFC 3339).
func WithCreatedAt(ts string) IPOption {
	return func(m *IPMetadata) { m.CreatedAt = ts }
}

// WithWatermark sets the watermark image URL.
func WithWatermark(url string) IPOption {
	return func(m *IPMetadata) { m.Watermark = url }
}

// WithCreators sets the creator list.
func WithCreators(creators ...Creator) IPOption {
	return func(m *IPMetadata) { m.Creators = creators }
}

// WithIPAttributes sets the attribute list.
func WithIPAttributes(attrs ...Attribute) IPOption {
	return func(m *IPMetadata) { m.Attributes = attrs }
}

// NewIPMetadata builds an IP metadata record. Title and description are
// required; a missing field fails with an error wrapping ErrValidation
// before any serialization or network activity.
func NewIPMetadata(title, description string, opts ...IPOption) (*IPMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: ip metadata requires a title", ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: ip metadata requires a description", ErrValidation)
	}
	m := &IPMetadata{Title: title, Description: description}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewNFTMetadata builds a token metadata record. Name, description and image
// are all required; a missing field fails with an error wrapping ErrValidation.
func NewNFTMetadata(name, description, image string, attrs ...Attribute) (*NFTMetadata, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: nft metadata requires a name", ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: nft metadata requires a description", ErrValidation)
	}
	if image == "" {
		return nil, fmt.Errorf("%w: nft metadata requires an image", ErrValidation)
	}
	return &NFTMetadata{Name: name, Description: description, Image: image, Attributes: attrs}, nil
}
