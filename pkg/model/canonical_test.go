package model

import (
	"bytes"
	"testing"
)

// TestCanonicalJSON_SortsKeys verifies that object keys are emitted in
// lexicographic order regardless of the order fields are declared or supplied.
func TestCanonicalJSON_SortsKeys(t *testing.T) {
	record, err := NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}

	got, err := CanonicalJSON(record)
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}

	want := `{"description":"This is a test IP asset","title":"My IP Asset"}`
	if string(got) != want {
		t.Fatalf("canonical serialization mismatch:\n got: %s\nwant: %s", got, want)
	}
}

// TestCanonicalJSON_Deterministic verifies that serializing the same logical
// record repeatedly yields byte-identical output.
func TestCanonicalJSON_Deterministic(t *testing.T) {
	record := map[string]any{
		"title":       "My IP Asset",
		"description": "This is a test IP asset",
		"attributes":  []map[string]any{{"trait_type": "kind", "value": "test"}},
	}

	first, err := CanonicalJSON(record)
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}
	for i := 0; i < 16; i++ {
		again, err := CanonicalJSON(record)
		if err != nil {
			t.Fatalf("CanonicalJSON returned error on round %d: %v", i, err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("serialization not deterministic on round %d:\n%s\n%s", i, first, again)
		}
	}
}

// TestCanonicalJSON_InsertionOrderIndependent verifies that two maps holding
// the same fields, built in different insertion orders, serialize identically.
func TestCanonicalJSON_InsertionOrderIndependent(t *testing.T) {
	a := map[string]string{}
	a["title"] = "My IP Asset"
	a["description"] = "This is a test IP asset"

	b := map[string]string{}
	b["description"] = "This is a test IP asset"
	b["title"] = "My IP Asset"

	ca, err := CanonicalJSON(a)
	if err != nil {
		t.Fatalf("CanonicalJSON(a) returned error: %v", err)
	}
	cb, err := CanonicalJSON(b)
	if err != nil {
		t.Fatalf("CanonicalJSON(b) returned error: %v", err)
	}
	if !bytes.Equal(ca, cb) {
		t.Fatalf("insertion order leaked into serialization:\n%s\n%s", ca, cb)
	}
}

// TestCanonicalJSON_DistinctRecordsDiffer verifies that records differing in
// at least one field produce different canonical serializations.
func TestCanonicalJSON_DistinctRecordsDiffer(t *testing.T) {
	r1, err := NewIPMetadata("My IP Asset", "This is a test IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}
	r2, err := NewIPMetadata("My IP Asset", "This is a different IP asset")
	if err != nil {
		t.Fatalf("NewIPMetadata returned error: %v", err)
	}

	c1, err := CanonicalJSON(r1)
	if err != nil {
		t.Fatalf("CanonicalJSON(r1) returned error: %v", err)
	}
	c2, err := CanonicalJSON(r2)
	if err != nil {
		t.Fatalf("CanonicalJSON(r2) returned error: %v", err)
	}
	if bytes.Equal(c1, c2) {
		t.Fatal("distinct records serialized identically")
	}
}

// TestCanonicalJSON_NoHTMLEscaping verifies that URL characters survive
// serialization unescaped, so hashes match what other tooling computes.
func TestCanonicalJSON_NoHTMLEscaping(t *testing.T) {
	record := map[string]string{"image": "https://example.com/a?b=1&c=2"}

	got, err := CanonicalJSON(record)
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}
	want := `{"image":"https://example.com/a?b=1&c=2"}`
	if string(got) != want {
		t.Fatalf("unexpected escaping:\n got: %s\nwant: %s", got, want)
	}
}

// TestCanonicalJSON_NestedStructs verifies that nested attribute objects keep
// sorted keys and numbers keep their original text.
func TestCanonicalJSON_NestedStructs(t *testing.T) {
	record, err := NewNFTMetadata("Test NFT", "Test Description", "ipfs://QmImage",
		Attribute{TraitType: "rarity", Value: "rare"})
	if err != nil {
		t.Fatalf("NewNFTMetadata returned error: %v", err)
	}

	got, err := CanonicalJSON(record)
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}
	want := `{"attributes":[{"trait_type":"rarity","value":"rare"}],"description":"Test Description","image":"ipfs://QmImage","name":"Test NFT"}`
	if string(got) != want {
		t.Fatalf("canonical serialization mismatch:\n got: %s\nwant: %s", got, want)
	}
}
