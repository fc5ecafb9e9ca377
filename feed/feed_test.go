package feed

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/asabya/fdp-storage/account"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) (ed25519.PrivateKey, account.Address) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv, account.NewAddress(pub)
}

func TestTopic_Deterministic(t *testing.T) {
	require.Equal(t, Topic("/a/b"), Topic("/a/b"))
	require.NotEqual(t, Topic("/a/b"), Topic("/a/c"))
	require.Len(t, Topic("/a/b"), 32)
}

func TestPublishResolve(t *testing.T) {
	f := NewMemFeed()
	ctx := context.Background()
	key, owner := newKey(t)

	topic := Topic("/docs/readme.txt")
	require.NoError(t, f.Publish(ctx, topic, []byte("v1"), key))

	payload, err := f.Resolve(ctx, topic, owner)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), payload)
}

func TestResolve_LatestWins(t *testing.T) {
	f := NewMemFeed()
	ctx := context.Background()
	key, owner := newKey(t)
	topic := Topic("/docs/readme.txt")

	require.NoError(t, f.Publish(ctx, topic, []byte("v1"), key))
	require.NoError(t, f.Publish(ctx, topic, []byte("v2"), key))

	payload, err := f.Resolve(ctx, topic, owner)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), payload)

	// History stays; the pointer log is append-only.
	require.Equal(t, 2, f.UpdateCount(topic, owner))
}

func TestResolve_NothingPublished(t *testing.T) {
	f := NewMemFeed()
	_, owner := newKey(t)

	_, err := f.Resolve(context.Background(), Topic("/missing"), owner)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_WrongOwner(t *testing.T) {
	f := NewMemFeed()
	ctx := context.Background()
	key, _ := newKey(t)
	_, other := newKey(t)
	topic := Topic("/docs/readme.txt")

	require.NoError(t, f.Publish(ctx, topic, []byte("v1"), key))

	_, err := f.Resolve(ctx, topic, other)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPublish_CancelledContext(t *testing.T) {
	f := NewMemFeed()
	key, _ := newKey(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Publish(ctx, Topic("/x"), []byte("v1"), key)
	require.ErrorIs(t, err, context.Canceled)
}
