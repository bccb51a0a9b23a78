package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/mintworks/ipasset-sdk-go/pkg/model"
)

// stubUploader echoes back a deterministic identifier derived from the bytes
// it receives, and records every upload.
type stubUploader struct {
	uploads [][]byte
	fail    error
}

func (s *stubUploader) Upload(_ context.Context, data []byte) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.uploads = append(s.uploads, data)
	sum := sha256.Sum256(data)
	return "Qm" + hex.EncodeToString(sum[:8]), nil
}

// TestPin_GoldenHash verifies the pinned content hash for the reference
// record: SHA-256 over the canonical serialization
// {"description":"This is a test IP asset","title":"My IP Asset"}.
func TestPin_GoldenHash(t *testing.T) {
	record, err := model.NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}

	client := NewClient(&stubUploader{}, "")
	pinned, err := client.Pin(context.Background(), record)
	if err != nil {
		t.Fatalf("Pin returned error: %v", err)
	}

	const want = "2bf87f1c8f6317e045f00ec45124a6f602296c2c8ad5eb50fe326529b7ff3088"
	if string(pinned.Hash) != want {
		t.Fatalf("content hash mismatch:\n got: %s\nwant: %s", pinned.Hash, want)
	}
	if len(string(pinned.Hash)) != 64 {
		t.Fatalf("hash is not 64 hex chars: %s", pinned.Hash)
	}
}

// TestPin_Idempotent verifies that pinning the same record twice against a
// deterministic backend yields the same identifier and the same hash.
func TestPin_Idempotent(t *testing.T) {
	record, err := model.NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}

	client := NewClient(&stubUploader{}, "")

	first, err := client.Pin(context.Background(), record)
	if err != nil {
		t.Fatalf("first Pin returned error: %v", err)
	}
	second, err := client.Pin(context.Background(), record)
	if err != nil {
		t.Fatalf("second Pin returned error: %v", err)
	}

	if first.Hash != second.Hash {
		t.Fatalf("hash changed between pins: %s vs %s", first.Hash, second.Hash)
	}
	if first.CID != second.CID {
		t.Fatalf("identifier changed between pins: %s vs %s", first.CID, second.CID)
	}
	if first.URI != IpfsPrefix+first.CID {
		t.Fatalf("URI not built from CID: %s", first.URI)
	}
}

// TestPin_UploadsCanonicalBytes verifies that the uploader receives exactly
// the canonical bytes the hash was computed over.
func TestPin_UploadsCanonicalBytes(t *testing.T) {
	record, err := model.NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}

	uploader := &stubUploader{}
	client := NewClient(uploader, "")
	pinned, err := client.Pin(context.Background(), record)
	if err != nil {
		t.Fatalf("Pin returned error: %v", err)
	}

	if len(uploader.uploads) != 1 {
		t.Fatalf("expected exactly one upload, got %d", len(uploader.uploads))
	}
	if got := ComputeHash(uploader.uploads[0]); got != pinned.Hash {
		t.Fatalf("uploaded bytes do not match hashed bytes: %s vs %s", got, pinned.Hash)
	}
}

// TestPin_UploadFailure verifies that a backend failure surfaces as an error
// wrapping ErrUpload and that nothing is recorded as uploaded.
func TestPin_UploadFailure(t *testing.T) {
	record, err := model.NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}

	uploader := &stubUploader{fail: fmt.Errorf("connection refused")}
	client := NewClient(uploader, "")

	_, err = client.Pin(context.Background(), record)
	if err == nil {
		t.Fatal("expected upload error")
	}
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("error does not wrap ErrUpload: %v", err)
	}
	if len(uploader.uploads) != 0 {
		t.Fatalf("failed upload was recorded: %d", len(uploader.uploads))
	}
}

// TestComputeHash_Deterministic verifies digest determinism over fixed bytes.
func TestComputeHash_Deterministic(t *testing.T) {
	data := []byte(`{"description":"This is a test IP asset","title":"My IP Asset"}`)

	first := ComputeHash(data)
	second := ComputeHash(data)
	if first != second {
		t.Fatalf("digest not deterministic: %s vs %s", first, second)
	}
	if first != "2bf87f1c8f6317e045f00ec45124a6f602296c2c8ad5eb50fe326529b7ff3088" {
		t.Fatalf("unexpected digest: %s", first)
	}
}

// TestFormatCID verifies URI prefix stripping and sanitization.
func TestFormatCID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ipfs://QmTest123", want: "QmTest123"},
		{in: "QmTest123", want: "QmTest123"},
		{in: " Qm\nTest123 ", want: "QmTest123"},
	}

	for _, tt := range tests {
		if got := formatCID(tt.in); got != tt.want {
			t.Fatalf("formatCID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
