// Package meta implements the versioned file-metadata record published
// through a pod's feed. The codec round-trips every field exactly and
// rejects records with an unknown schema version instead of guessing a
// layout. Semantic consistency (file size vs. block sizes and so on) is the
// caller's responsibility at construction time, not the codec's.
package meta

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/asabya/fdp-storage/account"
	"github.com/asabya/fdp-storage/blockstore"
)

// Version is the current metadata schema tag.
const Version = 1

var (
	// ErrCorrupt is returned when the record is not a valid document at all.
	ErrCorrupt = errors.New("corrupt metadata record")

	// ErrSchema is returned when required fields are absent.
	ErrSchema = errors.New("metadata schema mismatch")

	// ErrUnknownVersion is returned when the record carries a version tag
	// this codec does not recognize.
	ErrUnknownVersion = errors.New("unknown metadata version")
)

// Metadata is the per-file record published on the feed. Path and Name are
// disjoint: Path is the parent directory, Name the leaf. CreationTime is
// immutable after first write; AccessTime and ModificationTime may be
// updated by later operations. Compression is carried for wire compatibility
// and currently has no behavior. All timestamps are Unix seconds.
type Metadata struct {
	Version          int                  `json:"version"`
	PodAddress       account.Address      `json:"podAddress"`
	PodName          string               `json:"podName"`
	Path             string               `json:"filePath"`
	Name             string               `json:"fileName"`
	Size             uint64               `json:"fileSize"`
	BlockSize        uint64               `json:"blockSize"`
	ContentType      string               `json:"contentType"`
	Compression      string               `json:"compression"`
	CreationTime     int64                `json:"creationTime"`
	AccessTime       int64                `json:"accessTime"`
	ModificationTime int64                `json:"modificationTime"`
	BlocksReference  blockstore.Reference `json:"blocksReference"`
}

// FullPath returns the logical path of the file inside its pod.
func (m *Metadata) FullPath() string {
	if m.Path == "/" {
		return "/" + m.Name
	}
	return m.Path + "/" + m.Name
}

// Marshal serializes the record to its on-wire form.
func Marshal(m *Metadata) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return data, nil
}

// Unmarshal parses an on-wire record. It fails with ErrCorrupt when the
// document does not parse, ErrSchema when required fields are missing, and
// ErrUnknownVersion when the version tag is present but unrecognized.
func Unmarshal(data []byte) (*Metadata, error) {
	var header struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if header.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrSchema)
	}
	if *header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, *header.Version)
	}

	m := &Metadata{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%w: missing file name", ErrSchema)
	}
	if len(m.BlocksReference) != blockstore.RefSize {
		return nil, fmt.Errorf("%w: missing blocks reference", ErrSchema)
	}
	return m, nil
}
