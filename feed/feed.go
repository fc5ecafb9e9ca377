// Package feed implements the mutable-pointer collaborator: an owner-signed,
// append-only log keyed by (topic, owner address) whose latest payload can be
// resolved. The upload flow publishes the current metadata record for a path
// through a feed; resolve is the entry point of every download.
package feed

import (
	"context"
	"crypto/ed25519"
	"errors"

	"github.com/asabya/fdp-storage/account"
	"github.com/asabya/fdp-storage/internal/cryptox"
)

var (
	// ErrNotFound is returned by Resolve when nothing has been published on
	// the (topic, owner) pair.
	ErrNotFound = errors.New("no feed update found")

	// ErrInvalidSignature is returned when the latest update does not carry
	// a valid signature by the feed owner.
	ErrInvalidSignature = errors.New("invalid feed signature")
)

// Topic derives the feed topic for a full file path.
func Topic(path string) []byte {
	return cryptox.Keccak256([]byte(path))
}

// Service is the feed collaborator. Publish appends a signed update; it is
// atomic at this boundary and never partially applied. Resolve returns the
// latest payload published by owner on topic.
type Service interface {
	Publish(ctx context.Context, topic, payload []byte, key ed25519.PrivateKey) error
	Resolve(ctx context.Context, topic []byte, owner account.Address) ([]byte, error)
}
