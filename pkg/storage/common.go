// Package storage implements the content pinner: canonical serialization of a
// metadata record, SHA-256 content hashing, and upload to a remote pinning
// backend. Supported backends are a Kubo (IPFS) node reached over its HTTP API
// and the Pinata pinning service.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mintworks/ipasset-sdk-go/pkg/model"
)

const (
	// IpfsPrefix is the URI scheme prefix used for pinned content.
	IpfsPrefix = "ipfs://"
)

// ErrUpload is wrapped by every pinning failure (network error, timeout,
// non-success response). Match with errors.Is.
var ErrUpload = errors.New("pin upload failed")

// PinnedContent is the result of pinning one metadata record: the content
// hash of its canonical serialization, the identifier returned by the pinning
// service, and the retrieval URI built from it.
type PinnedContent struct {
	Hash model.ContentHash
	CID  string
	URI  string
}

// Pinner serializes a record canonically, hashes it, and stores it durably on
// a remote content-addressed backend.
type Pinner interface {
	Pin(ctx context.Context, record any) (*PinnedContent, error)
}

// Uploader stores raw bytes on a pinning backend and returns the content
// identifier. Implementations must not alter the bytes they are given: the
// content hash is computed client-side over exactly these bytes.
type Uploader interface {
	Upload(ctx context.Context, data []byte) (cid string, err error)
}

// Client is a Pinner backed by a pluggable Uploader, with an optional HTTP
// gateway for read-back verification.
type Client struct {
	uploader   Uploader
	gatewayURL string
}

// NewClient builds a Pinner around the given uploader. gatewayURL is the
// public HTTP gateway used by ReadBack; it may be empty if read-back is not
// needed.
func NewClient(uploader Uploader, gatewayURL string) *Client {
	return &Client{uploader: uploader, gatewayURL: gatewayURL}
}

// ComputeHash returns the hex-encoded SHA-256 digest of data. Deterministic:
// identical bytes always produce the identical digest.
func ComputeHash(data []byte) model.ContentHash {
	sum := sha256.Sum256(data)
	return model.ContentHash(hex.EncodeToString(sum[:]))
}

// Pin serializes record to canonical JSON, computes its content hash and
// uploads the bytes. Serialization failures surface as-is; upload failures
// wrap ErrUpload. The pinned bytes remain on the backend even if a later
// pipeline step fails.
func (c *Client) Pin(ctx context.Context, record any) (*PinnedContent, error) {
	data, err := model.CanonicalJSON(record)
	if err != nil {
		return nil, err
	}

	hash := ComputeHash(data)

	if c.uploader == nil {
		return nil, fmt.Errorf("%w: no uploader configured", ErrUpload)
	}

	cid, err := c.uploader.Upload(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	zap.L().Debug("pinned metadata record",
		zap.String("cid", cid),
		zap.String("hash", string(hash)))

	return &PinnedContent{
		Hash: hash,
		CID:  cid,
		URI:  IpfsPrefix + cid,
	}, nil
}

// formatCID removes the URI scheme prefix and any non-alphanumeric characters
// (except '=') from the supplied identifier, producing a clean CID string for
// the underlying backends.
func formatCID(id string) string {
	id = strings.Replace(id, IpfsPrefix, "", -1)
	return removeSpecialCharacters(id)
}

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString. Used to sanitize incoming CIDs.
func removeSpecialCharacters(pString string) string {
	reg := regexp.MustCompile("[^a-zA-Z0-9=]")
	return reg.ReplaceAllString(pString, "")
}
