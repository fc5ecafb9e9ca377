// Package manifest implements the canonical document listing a file's blocks
// in reconstruction order. Encoding is exact: Decode(Encode(m)) == m for
// every valid manifest, including the empty one, and block order is preserved
// verbatim because it defines byte-stream reassembly order.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/asabya/fdp-storage/blockstore"
)

var (
	// ErrFormat is returned when a document is not a syntactically valid
	// manifest.
	ErrFormat = errors.New("malformed manifest document")

	// ErrSchema is returned when a syntactically valid document is missing
	// required descriptor fields or carries fields of the wrong type.
	ErrSchema = errors.New("manifest schema mismatch")
)

// Block describes one stored block of a file. Name is derived from the
// block's ordinal index, not its content, so ordering survives content
// addressing. CompressedSize currently always equals Size; the field is
// carried on the wire for compatibility.
type Block struct {
	Name           string               `json:"name"`
	Size           uint64               `json:"size"`
	CompressedSize uint64               `json:"compressedSize"`
	Reference      blockstore.Reference `json:"reference"`
}

// BlockName returns the deterministic name for the block at the given
// ordinal index within a file.
func BlockName(index int) string {
	return fmt.Sprintf("block-%05d", index)
}

// Manifest is the ordered block list for one file.
type Manifest struct {
	Blocks []Block `json:"blocks"`
}

// TotalSize sums the plaintext sizes of all blocks.
func (m Manifest) TotalSize() uint64 {
	var total uint64
	for _, b := range m.Blocks {
		total += b.Size
	}
	return total
}

// Encode serializes the manifest. A nil block slice encodes identically to an
// empty one so that zero-length files round-trip.
func Encode(m Manifest) ([]byte, error) {
	if m.Blocks == nil {
		m.Blocks = []Block{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return data, nil
}

// Decode parses a manifest document. It fails with ErrFormat when the
// document is not valid JSON and with ErrSchema when the block list is
// absent or a descriptor is structurally invalid.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return Manifest{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Manifest{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if m.Blocks == nil {
		return Manifest{}, fmt.Errorf("%w: missing block list", ErrSchema)
	}
	for i, b := range m.Blocks {
		if b.Name == "" {
			return Manifest{}, fmt.Errorf("%w: block %d has no name", ErrSchema, i)
		}
		if len(b.Reference) != blockstore.RefSize {
			return Manifest{}, fmt.Errorf("%w: block %d has no reference", ErrSchema, i)
		}
	}
	return m, nil
}
