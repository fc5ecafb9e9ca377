// Package sharing builds and consumes share capsules: encrypted, portable
// descriptors that let a third party resolve and decrypt a shared file or
// pod without holding any account credential. A capsule is stored as one
// content-addressed object under an encrypted reference; the reference
// string alone both locates and decrypts it.
package sharing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/asabya/fdp-storage/account"
	"github.com/asabya/fdp-storage/blockstore"
	"github.com/asabya/fdp-storage/dirindex"
	"github.com/asabya/fdp-storage/feed"
	"github.com/asabya/fdp-storage/file"
	"github.com/asabya/fdp-storage/logging"
	"github.com/asabya/fdp-storage/meta"
)

// ErrCorruptShareInfo is returned when a capsule dereferences but its
// content does not parse as share info.
var ErrCorruptShareInfo = errors.New("corrupt share info")

// ShareInfo is the capsule payload for a single file: the metadata as
// published by the sharer, plus the sharer's pod address. The address is
// required because shared metadata alone does not identify which owner's
// feed and blocks the file lives under.
type ShareInfo struct {
	Meta          *meta.Metadata  `json:"meta"`
	SourceAddress account.Address `json:"source_address"`
}

// PodShareInfo is the capsule payload for sharing a whole pod read-only.
type PodShareInfo struct {
	PodName string          `json:"pod_name"`
	Address account.Address `json:"pod_address"`
}

// Service builds and consumes share capsules.
type Service struct {
	store    blockstore.Store
	feeds    feed.Service
	dir      dirindex.Index
	accounts account.Provider
	files    *file.Service
	log      logging.Logger
}

// NewService wires the sharing flows to their collaborators. A nil logger
// discards output.
func NewService(store blockstore.Store, feeds feed.Service, dir dirindex.Index, accounts account.Provider, files *file.Service, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Service{store: store, feeds: feeds, dir: dir, accounts: accounts, files: files, log: log}
}

func validatePodName(podName string) error {
	if strings.TrimSpace(podName) == "" {
		return file.ErrInvalidPodName
	}
	return nil
}

// Share builds a capsule for the already-published file at p inside the
// named pod and returns its encrypted reference.
func (s *Service) Share(ctx context.Context, token, podName, p string) (blockstore.EncryptedReference, error) {
	if err := validatePodName(podName); err != nil {
		return nil, err
	}
	fullPath := path.Clean("/" + strings.TrimSpace(p))
	if fullPath == "/" {
		return nil, fmt.Errorf("%w: %q has no leaf name", file.ErrInvalidPath, p)
	}

	pod, err := s.accounts.Lookup(ctx, token, podName)
	if err != nil {
		return nil, err
	}

	payload, err := s.feeds.Resolve(ctx, feed.Topic(fullPath), pod.Address)
	if err != nil {
		if errors.Is(err, feed.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", file.ErrNotFound, fullPath)
		}
		return nil, err
	}
	md, err := meta.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", file.ErrCorruptMetadata, err)
	}

	info := ShareInfo{Meta: md, SourceAddress: pod.Address}
	capsule, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encoding share info: %w", err)
	}

	ref, err := blockstore.PutEncrypted(ctx, s.store, capsule)
	if err != nil {
		return nil, fmt.Errorf("storing share capsule: %w", err)
	}

	s.log.Info(ctx, "file shared", "pod", podName, "path", fullPath)
	return ref, nil
}

// fetchCapsule validates the reference shape before touching the store,
// then dereferences and decrypts in one step.
func (s *Service) fetchCapsule(ctx context.Context, ref string) ([]byte, error) {
	eref, err := blockstore.ParseEncryptedReference(ref)
	if err != nil {
		return nil, err
	}

	data, err := blockstore.GetEncrypted(ctx, s.store, eref)
	if err != nil {
		if errors.Is(err, blockstore.ErrUnsealFailed) {
			return nil, fmt.Errorf("%w: %v", ErrCorruptShareInfo, err)
		}
		return nil, err
	}
	return data, nil
}

// GetSharedInfo resolves a capsule into its share info. It needs no session:
// recipients are not assumed to hold an account.
func (s *Service) GetSharedInfo(ctx context.Context, ref string) (*ShareInfo, error) {
	data, err := s.fetchCapsule(ctx, ref)
	if err != nil {
		return nil, err
	}

	var info ShareInfo
	if err := json.Unmarshal(data, &info); err != nil || info.Meta == nil {
		return nil, fmt.Errorf("%w: not a file capsule", ErrCorruptShareInfo)
	}
	return &info, nil
}

// SaveShared imports a shared file into the caller's own pod: it rewrites
// the metadata's pod, path and name for the importing pod, registers a
// directory entry and republishes under the importer's identity. Blocks are
// not re-uploaded; content addresses are global, not pod-scoped. The
// original content fields, including the creation time, are preserved. An
// empty newName keeps the shared file's name.
func (s *Service) SaveShared(ctx context.Context, token, podName, dstDir, ref, newName string) (*meta.Metadata, error) {
	if err := validatePodName(podName); err != nil {
		return nil, err
	}
	if strings.Contains(newName, "/") {
		return nil, fmt.Errorf("%w: %q is not a leaf name", file.ErrInvalidPath, newName)
	}

	info, err := s.GetSharedInfo(ctx, ref)
	if err != nil {
		return nil, err
	}

	pod, err := s.accounts.Lookup(ctx, token, podName)
	if err != nil {
		return nil, err
	}

	name := info.Meta.Name
	if newName != "" {
		name = newName
	}
	dirPath := path.Clean("/" + strings.TrimSpace(dstDir))

	md := *info.Meta
	md.PodName = podName
	md.PodAddress = pod.Address
	md.Path = dirPath
	md.Name = name
	now := time.Now().Unix()
	md.AccessTime = now
	md.ModificationTime = now

	if err := s.dir.AddEntry(ctx, pod.Address, dirPath, name, true); err != nil {
		return nil, fmt.Errorf("registering directory entry: %w", err)
	}

	raw, err := meta.Marshal(&md)
	if err != nil {
		return nil, err
	}
	if err := s.feeds.Publish(ctx, feed.Topic(md.FullPath()), raw, pod.SigningKey); err != nil {
		return nil, fmt.Errorf("publishing metadata: %w", err)
	}

	s.log.Info(ctx, "shared file saved", "pod", podName, "path", md.FullPath())
	return &md, nil
}

// DownloadShared reads a shared file directly from the sharer's pod,
// without a session and without republishing anything.
func (s *Service) DownloadShared(ctx context.Context, ref string) ([]byte, *meta.Metadata, error) {
	info, err := s.GetSharedInfo(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return s.files.DownloadFromAddress(ctx, info.SourceAddress, info.Meta.FullPath())
}

// SharePod builds a capsule granting read access to a whole pod.
func (s *Service) SharePod(ctx context.Context, token, podName string) (blockstore.EncryptedReference, error) {
	if err := validatePodName(podName); err != nil {
		return nil, err
	}

	pod, err := s.accounts.Lookup(ctx, token, podName)
	if err != nil {
		return nil, err
	}

	capsule, err := json.Marshal(PodShareInfo{PodName: pod.Name, Address: pod.Address})
	if err != nil {
		return nil, fmt.Errorf("encoding pod share info: %w", err)
	}

	ref, err := blockstore.PutEncrypted(ctx, s.store, capsule)
	if err != nil {
		return nil, fmt.Errorf("storing share capsule: %w", err)
	}

	s.log.Info(ctx, "pod shared", "pod", podName)
	return ref, nil
}

// DownloadFromSharedPod reads the file at p from a pod shared via SharePod.
func (s *Service) DownloadFromSharedPod(ctx context.Context, ref, p string) ([]byte, *meta.Metadata, error) {
	data, err := s.fetchCapsule(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	var info PodShareInfo
	if err := json.Unmarshal(data, &info); err != nil || info.Address.IsZero() {
		return nil, nil, fmt.Errorf("%w: not a pod capsule", ErrCorruptShareInfo)
	}
	return s.files.DownloadFromAddress(ctx, info.Address, p)
}
