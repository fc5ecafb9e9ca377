// Package blockstore defines the content-addressed store the upload and
// download flows are built on, together with the reference types used to
// address stored content. Two implementations are provided: an in-memory
// store and an S3-backed store. Encrypted put/get helpers layer a sealed,
// capability-bearing reference on top of any Store.
package blockstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/asabya/fdp-storage/internal/cryptox"
)

// RefSize is the length in bytes of a plain content address.
const RefSize = 32

var (
	// ErrNotFound is returned by Get when no content exists at the address.
	ErrNotFound = errors.New("content not found")

	// ErrInvalidReference is returned when a reference string does not have
	// the expected shape. It is raised before any store access.
	ErrInvalidReference = errors.New("invalid reference")
)

// Reference is a 32-byte Keccak-256 content address. Its text form is hex,
// which is also how it appears inside JSON documents.
type Reference []byte

// NewReference computes the content address of data.
func NewReference(data []byte) Reference {
	return Reference(cryptox.Keccak256(data))
}

// ParseReference parses the hex text form of a plain content address.
func ParseReference(s string) (Reference, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != RefSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	return Reference(b), nil
}

func (r Reference) String() string { return hex.EncodeToString(r) }

// IsZero reports whether the reference is unset.
func (r Reference) IsZero() bool { return len(r) == 0 }

// Equal reports whether two references address the same content.
func (r Reference) Equal(o Reference) bool { return r.String() == o.String() }

// MarshalText implements encoding.TextMarshaler so references serialize as
// hex strings in JSON.
func (r Reference) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(r)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reference) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidReference, string(text))
	}
	*r = b
	return nil
}

// Store is the content-addressed storage collaborator. Put stores an
// immutable blob and returns its address; Get retrieves it. Content
// addressing makes Put idempotent, so partial multi-blob writes are always
// safe to retry.
type Store interface {
	Put(ctx context.Context, data []byte) (Reference, error)
	Get(ctx context.Context, ref Reference) ([]byte, error)
}
