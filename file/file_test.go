package file

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asabya/fdp-storage/account"
	"github.com/asabya/fdp-storage/blockstore"
	"github.com/asabya/fdp-storage/dirindex"
	"github.com/asabya/fdp-storage/feed"
	"github.com/asabya/fdp-storage/manifest"
	"github.com/asabya/fdp-storage/meta"
)

type env struct {
	store *blockstore.MemStore
	feeds *feed.MemFeed
	dir   *dirindex.MemIndex
	accts *account.Manager
	svc   *Service
	token string
	pod   *account.Pod
}

func newEnv(t *testing.T, cfg Config) *env {
	t.Helper()

	e := &env{
		store: blockstore.NewMemStore(),
		feeds: feed.NewMemFeed(),
		dir:   dirindex.NewMemIndex(),
		accts: account.NewManager([]byte("test-secret"), time.Hour),
	}
	e.svc = NewService(e.store, e.feeds, e.dir, e.accts, nil, cfg)

	_, token, err := e.accts.NewUser()
	require.NoError(t, err)
	e.token = token

	pod, err := e.accts.CreatePod(context.Background(), token, "photos")
	require.NoError(t, err)
	e.pod = pod
	return e
}

func patterned(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}

func TestUploadDownload_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantBlk int
	}{
		{"empty", 0, 0},
		{"one byte", 1, 1},
		{"exactly one block", 10, 1},
		{"several plus remainder", 25, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t, Config{BlockSize: 10})
			ctx := context.Background()
			data := patterned(tc.size)

			md, err := e.svc.Upload(ctx, e.token, "photos", "/docs/data.bin", data, nil)
			require.NoError(t, err)
			require.Equal(t, uint64(tc.size), md.Size)
			require.Equal(t, "/docs", md.Path)
			require.Equal(t, "data.bin", md.Name)

			got, gotMD, err := e.svc.Download(ctx, e.token, "photos", "/docs/data.bin")
			require.NoError(t, err)
			require.True(t, bytes.Equal(data, got))
			require.Equal(t, md, gotMD)

			man, err := manifest.Decode(mustGet(t, e, md.BlocksReference))
			require.NoError(t, err)
			require.Len(t, man.Blocks, tc.wantBlk)
		})
	}
}

func mustGet(t *testing.T, e *env, ref blockstore.Reference) []byte {
	t.Helper()
	data, err := e.store.Get(context.Background(), ref)
	require.NoError(t, err)
	return data
}

func TestUpload_BlockAccounting(t *testing.T) {
	e := newEnv(t, Config{})
	ctx := context.Background()
	data := patterned(2_500_000)

	md, err := e.svc.Upload(ctx, e.token, "photos", "/big.bin", data, &UploadOptions{BlockSize: 1_000_000})
	require.NoError(t, err)
	require.Equal(t, uint64(2_500_000), md.Size)
	require.Equal(t, uint64(1_000_000), md.BlockSize)

	man, err := manifest.Decode(mustGet(t, e, md.BlocksReference))
	require.NoError(t, err)
	require.Len(t, man.Blocks, 3)
	require.Equal(t, uint64(1_000_000), man.Blocks[0].Size)
	require.Equal(t, uint64(1_000_000), man.Blocks[1].Size)
	require.Equal(t, uint64(500_000), man.Blocks[2].Size)
	require.Equal(t, md.Size, man.TotalSize())
}

func TestUpload_MetadataFields(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	md, err := e.svc.Upload(ctx, e.token, "photos", "/docs/notes.txt", []byte("hello"),
		&UploadOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	require.Equal(t, meta.Version, md.Version)
	require.Equal(t, e.pod.Address, md.PodAddress)
	require.Equal(t, "photos", md.PodName)
	require.Equal(t, "text/plain", md.ContentType)
	require.Empty(t, md.Compression)
	require.Equal(t, md.CreationTime, md.ModificationTime)
	require.NotZero(t, md.CreationTime)
}

func TestUpload_ValidationBeforeAnyRemoteCall(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	// A bad token would fail account resolution, but validation errors
	// must surface first.
	_, err := e.svc.Upload(ctx, "bad-token", "photos", "/", []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidPath)

	_, err = e.svc.Upload(ctx, "bad-token", "", "/a.txt", []byte("x"), nil)
	require.ErrorIs(t, err, ErrInvalidPodName)

	_, err = e.svc.Upload(ctx, "bad-token", "photos", "/a.txt", []byte("x"), &UploadOptions{BlockSize: -1})
	require.Error(t, err)
}

func TestUpload_IdentityErrors(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	_, err := e.svc.Upload(ctx, "bad-token", "photos", "/a.txt", []byte("x"), nil)
	require.ErrorIs(t, err, account.ErrNotAuthenticated)

	_, err = e.svc.Upload(ctx, e.token, "nope", "/a.txt", []byte("x"), nil)
	require.ErrorIs(t, err, account.ErrPodNotFound)
}

func TestUpload_PathNormalization(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	md, err := e.svc.Upload(ctx, e.token, "photos", "docs//sub/../a.txt", []byte("x"), nil)
	require.NoError(t, err)
	require.Equal(t, "/docs", md.Path)
	require.Equal(t, "a.txt", md.Name)
}

func TestUpload_SamePathOverwrites(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	_, err := e.svc.Upload(ctx, e.token, "photos", "/a.txt", []byte("first"), nil)
	require.NoError(t, err)
	_, err = e.svc.Upload(ctx, e.token, "photos", "/a.txt", []byte("second"), nil)
	require.NoError(t, err)

	got, _, err := e.svc.Download(ctx, e.token, "photos", "/a.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got)

	entries, err := e.dir.List(ctx, e.pod.Address, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Feed history is append-only; the overwrite added an update.
	require.Equal(t, 2, e.feeds.UpdateCount(feed.Topic("/a.txt"), e.pod.Address))
}

func TestDownload_NotFound(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})

	_, _, err := e.svc.Download(context.Background(), e.token, "photos", "/missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDownload_CorruptMetadata(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	require.NoError(t, e.feeds.Publish(ctx, feed.Topic("/bad.txt"), []byte("not metadata"), e.pod.SigningKey))

	_, _, err := e.svc.Download(ctx, e.token, "photos", "/bad.txt")
	require.ErrorIs(t, err, ErrCorruptMetadata)
}

func publishMetadata(t *testing.T, e *env, md *meta.Metadata) {
	t.Helper()
	raw, err := meta.Marshal(md)
	require.NoError(t, err)
	require.NoError(t, e.feeds.Publish(context.Background(), feed.Topic(md.FullPath()), raw, e.pod.SigningKey))
}

func TestDownload_CorruptManifest(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	junkRef, err := e.store.Put(ctx, []byte("junk, not a manifest"))
	require.NoError(t, err)

	publishMetadata(t, e, &meta.Metadata{
		Version: meta.Version, PodAddress: e.pod.Address, PodName: "photos",
		Path: "/", Name: "bad.txt", BlocksReference: junkRef,
	})

	_, _, err = e.svc.Download(ctx, e.token, "photos", "/bad.txt")
	require.ErrorIs(t, err, ErrCorruptManifest)
}

func TestDownload_IncompleteBlocks(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	// Manifest references a block that was never stored.
	man := manifest.Manifest{Blocks: []manifest.Block{{
		Name: manifest.BlockName(0), Size: 5, CompressedSize: 5,
		Reference: blockstore.NewReference([]byte("never uploaded")),
	}}}
	manBytes, err := manifest.Encode(man)
	require.NoError(t, err)
	manRef, err := e.store.Put(ctx, manBytes)
	require.NoError(t, err)

	publishMetadata(t, e, &meta.Metadata{
		Version: meta.Version, PodAddress: e.pod.Address, PodName: "photos",
		Path: "/", Name: "pruned.txt", Size: 5, BlocksReference: manRef,
	})

	_, _, err = e.svc.Download(ctx, e.token, "photos", "/pruned.txt")
	require.ErrorIs(t, err, ErrIncompleteBlocks)
}

func TestDownload_MissingManifestIsIncomplete(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})

	publishMetadata(t, e, &meta.Metadata{
		Version: meta.Version, PodAddress: e.pod.Address, PodName: "photos",
		Path: "/", Name: "gone.txt", BlocksReference: blockstore.NewReference([]byte("absent")),
	})

	_, _, err := e.svc.Download(context.Background(), e.token, "photos", "/gone.txt")
	require.ErrorIs(t, err, ErrIncompleteBlocks)
}

func TestDelete_IsLogicalRemoval(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	data := patterned(25)
	_, err := e.svc.Upload(ctx, e.token, "photos", "/docs/a.txt", data, nil)
	require.NoError(t, err)

	require.NoError(t, e.svc.Delete(ctx, e.token, "photos", "/docs/a.txt"))

	// The directory listing no longer shows the file.
	entries, err := e.dir.List(ctx, e.pod.Address, "/docs")
	require.NoError(t, err)
	require.Empty(t, entries)

	// The feed pointer still resolves: deletion is logical, not physical.
	got, _, err := e.svc.Download(ctx, e.token, "photos", "/docs/a.txt")
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDelete_Validation(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	require.ErrorIs(t, e.svc.Delete(ctx, e.token, "photos", "/"), ErrInvalidPath)
	require.ErrorIs(t, e.svc.Delete(ctx, e.token, "", "/a.txt"), ErrInvalidPodName)
	require.ErrorIs(t, e.svc.Delete(ctx, "bad-token", "photos", "/a.txt"), account.ErrNotAuthenticated)
}

func TestDownloadFromAddress_NoSessionNeeded(t *testing.T) {
	e := newEnv(t, Config{BlockSize: 10})
	ctx := context.Background()

	data := patterned(42)
	_, err := e.svc.Upload(ctx, e.token, "photos", "/pub/a.bin", data, nil)
	require.NoError(t, err)

	got, md, err := e.svc.DownloadFromAddress(ctx, e.pod.Address, "/pub/a.bin")
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.Equal(t, "/pub/a.bin", md.FullPath())
}
