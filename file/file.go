// Package file implements the upload/download orchestrator: splitting a
// payload into blocks, materializing them in the content-addressed store,
// publishing the file's metadata through its feed, and the inverse read
// path. Every operation receives its session token explicitly; the package
// holds no per-caller state, so concurrent operations with different
// identities are safe. Concurrent writes to the same (pod, path) pair race
// on the directory entry and feed pointer; callers needing stronger
// guarantees must serialize writes per path.
package file

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/asabya/fdp-storage/account"
	"github.com/asabya/fdp-storage/blockstore"
	"github.com/asabya/fdp-storage/dirindex"
	"github.com/asabya/fdp-storage/feed"
	"github.com/asabya/fdp-storage/logging"
)

const (
	// DefaultBlockSize is the block length used when the caller does not
	// configure one.
	DefaultBlockSize = 1_000_000

	// DefaultMaxWorkers bounds concurrent block transfers per operation.
	DefaultMaxWorkers = 4
)

var (
	// ErrInvalidPath is returned when a destination does not resolve to a
	// non-empty leaf name. Raised before any remote call.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidPodName is returned for an empty pod name. Raised before
	// any remote call.
	ErrInvalidPodName = errors.New("invalid pod name")

	// ErrNotFound is returned when the feed has no entry at the path.
	ErrNotFound = errors.New("file not found")

	// ErrCorruptMetadata is returned when the resolved feed payload does
	// not parse as a metadata record.
	ErrCorruptMetadata = errors.New("corrupt metadata")

	// ErrCorruptManifest is returned when the blocks document does not
	// parse as a manifest.
	ErrCorruptManifest = errors.New("corrupt manifest")

	// ErrIncompleteBlocks is returned when referenced content is missing
	// from the store, distinct from transient store errors so callers can
	// tell pruned data from network failure.
	ErrIncompleteBlocks = errors.New("incomplete blocks")
)

// Config tunes the orchestrator. Zero values fall back to the defaults.
type Config struct {
	BlockSize  int
	MaxWorkers int
}

// Service drives the end-to-end upload, download and delete flows against
// the store, feed, directory and account collaborators.
type Service struct {
	store    blockstore.Store
	feeds    feed.Service
	dir      dirindex.Index
	accounts account.Provider
	log      logging.Logger
	cfg      Config
}

// NewService wires the orchestrator to its collaborators. A nil logger
// discards output.
func NewService(store blockstore.Store, feeds feed.Service, dir dirindex.Index, accounts account.Provider, log logging.Logger, cfg Config) *Service {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Service{store: store, feeds: feeds, dir: dir, accounts: accounts, log: log, cfg: cfg}
}

// splitPath normalizes a destination into its parent directory and leaf
// name. The leaf must be non-empty after normalization.
func splitPath(p string) (string, string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(p))
	if cleaned == "/" {
		return "", "", fmt.Errorf("%w: %q has no leaf name", ErrInvalidPath, p)
	}
	return path.Dir(cleaned), path.Base(cleaned), nil
}

func joinPath(dirPath, name string) string {
	if dirPath == "/" {
		return "/" + name
	}
	return dirPath + "/" + name
}

func validatePodName(podName string) error {
	if strings.TrimSpace(podName) == "" {
		return ErrInvalidPodName
	}
	return nil
}
