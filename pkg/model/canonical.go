package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializes v into its canonical JSON form: UTF-8, object keys
// sorted lexicographically by byte value, compact encoding with no
// insignificant whitespace, no HTML escaping and no trailing newline.
//
// The content hash recorded on-chain is computed over exactly these bytes, so
// two logically equal records must always serialize identically regardless of
// field declaration or insertion order. encoding/json does not promise key
// ordering for structs, so the value is marshalled once and re-encoded through
// a generic tree, where map keys are emitted sorted. Numbers round-trip as
// json.Number to keep their original text.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonical decode: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tree); err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}

	// Encoder always appends a newline; canonical form has none.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
