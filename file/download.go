package file

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/asabya/fdp-storage/account"
	"github.com/asabya/fdp-storage/blockstore"
	"github.com/asabya/fdp-storage/feed"
	"github.com/asabya/fdp-storage/manifest"
	"github.com/asabya/fdp-storage/meta"
	"github.com/asabya/fdp-storage/splitter"
)

// Download reads the file at p inside the named pod and returns its content
// together with its metadata.
func (s *Service) Download(ctx context.Context, token, podName, p string) ([]byte, *meta.Metadata, error) {
	if err := validatePodName(podName); err != nil {
		return nil, nil, err
	}
	pod, err := s.accounts.Lookup(ctx, token, podName)
	if err != nil {
		return nil, nil, err
	}
	return s.DownloadFromAddress(ctx, pod.Address, p)
}

// DownloadFromAddress reads the file at p published under the given owner
// address. No session is required: this is the path share recipients use.
//
// The manifest is fetched and decoded before any block fetch; blocks are
// then fetched concurrently and assembled in manifest order regardless of
// completion order.
func (s *Service) DownloadFromAddress(ctx context.Context, owner account.Address, p string) ([]byte, *meta.Metadata, error) {
	dirPath, name, err := splitPath(p)
	if err != nil {
		return nil, nil, err
	}
	fullPath := joinPath(dirPath, name)

	payload, err := s.feeds.Resolve(ctx, feed.Topic(fullPath), owner)
	if err != nil {
		if errors.Is(err, feed.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, fullPath)
		}
		return nil, nil, err
	}

	md, err := meta.Unmarshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}

	manifestBytes, err := s.store.Get(ctx, md.BlocksReference)
	if err != nil {
		if errors.Is(err, blockstore.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: manifest missing at %s", ErrIncompleteBlocks, md.BlocksReference)
		}
		return nil, nil, err
	}
	man, err := manifest.Decode(manifestBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptManifest, err)
	}

	blocks := make([][]byte, len(man.Blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxWorkers)
	for i, b := range man.Blocks {
		g.Go(func() error {
			data, err := s.store.Get(gctx, b.Reference)
			if err != nil {
				if errors.Is(err, blockstore.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrIncompleteBlocks, b.Name)
				}
				return fmt.Errorf("fetching %s: %w", b.Name, err)
			}
			blocks[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	s.log.Debug(ctx, "file downloaded", "path", fullPath, "blocks", len(blocks))
	return splitter.Join(blocks), md, nil
}
