package feed

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"sync"

	"github.com/asabya/fdp-storage/account"
)

type update struct {
	payload   []byte
	signature []byte
	publicKey ed25519.PublicKey
}

// MemFeed is an in-memory Service. Each (topic, owner) pair maps to an
// append-only update log; resolve returns the latest entry after verifying
// its signature against the owner address.
type MemFeed struct {
	mu   sync.RWMutex
	logs map[string][]update
}

// NewMemFeed returns an empty in-memory feed service.
func NewMemFeed() *MemFeed {
	return &MemFeed{logs: make(map[string][]update)}
}

func feedKey(topic []byte, owner account.Address) string {
	return hex.EncodeToString(topic) + "/" + owner.String()
}

// Publish appends a signed update. The owner address is derived from the
// signing key, so an update can never land under a foreign owner.
func (f *MemFeed) Publish(ctx context.Context, topic, payload []byte, key ed25519.PrivateKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pub := key.Public().(ed25519.PublicKey)
	owner := account.NewAddress(pub)

	cp := make([]byte, len(payload))
	copy(cp, payload)
	u := update{
		payload:   cp,
		signature: ed25519.Sign(key, cp),
		publicKey: pub,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	k := feedKey(topic, owner)
	f.logs[k] = append(f.logs[k], u)
	return nil
}

// Resolve returns the latest payload published by owner on topic.
func (f *MemFeed) Resolve(ctx context.Context, topic []byte, owner account.Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	log := f.logs[feedKey(topic, owner)]
	if len(log) == 0 {
		return nil, ErrNotFound
	}

	u := log[len(log)-1]
	if account.NewAddress(u.publicKey) != owner || !ed25519.Verify(u.publicKey, u.payload, u.signature) {
		return nil, ErrInvalidSignature
	}

	cp := make([]byte, len(u.payload))
	copy(cp, u.payload)
	return cp, nil
}

// UpdateCount reports how many updates have been published on the pair. The
// log is append-only; republishing never rewrites history.
func (f *MemFeed) UpdateCount(topic []byte, owner account.Address) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.logs[feedKey(topic, owner)])
}
