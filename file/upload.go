package file

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asabya/fdp-storage/feed"
	"github.com/asabya/fdp-storage/manifest"
	"github.com/asabya/fdp-storage/meta"
	"github.com/asabya/fdp-storage/splitter"
)

// UploadOptions overrides per-upload settings. A zero BlockSize uses the
// service default; ContentType defaults to empty.
type UploadOptions struct {
	BlockSize   int
	ContentType string
}

// Upload materializes data at dst inside the named pod and returns the
// published metadata.
//
// Blocks are uploaded with bounded concurrency; the manifest upload happens
// strictly after all blocks, and the feed publish strictly after the
// manifest, since each step consumes the previous step's reference. A
// failure mid-way leaves orphaned content-addressed blocks behind, which is
// harmless (content addressing makes retries idempotent), but the whole
// upload must be retried, not resumed. If the feed publish itself fails the
// already-registered directory entry points at an unpublished path; see
// Delete for the logical-removal semantics.
func (s *Service) Upload(ctx context.Context, token, podName, dst string, data []byte, opts *UploadOptions) (*meta.Metadata, error) {
	blockSize := s.cfg.BlockSize
	contentType := ""
	if opts != nil {
		if opts.BlockSize != 0 {
			blockSize = opts.BlockSize
		}
		contentType = opts.ContentType
	}

	// Caller input is validated before any remote call.
	if err := validatePodName(podName); err != nil {
		return nil, err
	}
	dirPath, name, err := splitPath(dst)
	if err != nil {
		return nil, err
	}
	blocks, err := splitter.Split(data, blockSize)
	if err != nil {
		return nil, err
	}

	pod, err := s.accounts.Lookup(ctx, token, podName)
	if err != nil {
		return nil, err
	}

	descriptors := make([]manifest.Block, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxWorkers)
	for i, block := range blocks {
		g.Go(func() error {
			ref, err := s.store.Put(gctx, block)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", manifest.BlockName(i), err)
			}
			descriptors[i] = manifest.Block{
				Name:           manifest.BlockName(i),
				Size:           uint64(len(block)),
				CompressedSize: uint64(len(block)),
				Reference:      ref,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifestBytes, err := manifest.Encode(manifest.Manifest{Blocks: descriptors})
	if err != nil {
		return nil, err
	}
	blocksRef, err := s.store.Put(ctx, manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("uploading manifest: %w", err)
	}

	now := time.Now().Unix()
	md := &meta.Metadata{
		Version:          meta.Version,
		PodAddress:       pod.Address,
		PodName:          podName,
		Path:             dirPath,
		Name:             name,
		Size:             uint64(len(data)),
		BlockSize:        uint64(blockSize),
		ContentType:      contentType,
		CreationTime:     now,
		AccessTime:       now,
		ModificationTime: now,
		BlocksReference:  blocksRef,
	}

	// Create-or-update: re-uploading to the same path overwrites the prior
	// entry without error.
	if err := s.dir.AddEntry(ctx, pod.Address, dirPath, name, true); err != nil {
		return nil, fmt.Errorf("registering directory entry: %w", err)
	}

	raw, err := meta.Marshal(md)
	if err != nil {
		return nil, err
	}
	if err := s.feeds.Publish(ctx, feed.Topic(md.FullPath()), raw, pod.SigningKey); err != nil {
		return nil, fmt.Errorf("publishing metadata: %w", err)
	}

	s.log.Info(ctx, "file uploaded",
		"pod", podName, "path", md.FullPath(), "size", md.Size, "blocks", len(blocks))
	return md, nil
}
