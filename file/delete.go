package file

import (
	"context"
	"fmt"
)

// Delete removes the directory entry for p inside the named pod. Removal is
// logical: published blocks stay in the content-addressed store (they are
// immutable and may be referenced elsewhere) and the feed's pointer history
// is untouched, so a download by an old feed pointer may still succeed after
// deletion.
func (s *Service) Delete(ctx context.Context, token, podName, p string) error {
	if err := validatePodName(podName); err != nil {
		return err
	}
	dirPath, name, err := splitPath(p)
	if err != nil {
		return err
	}

	pod, err := s.accounts.Lookup(ctx, token, podName)
	if err != nil {
		return err
	}

	if err := s.dir.RemoveEntry(ctx, pod.Address, dirPath, name, true); err != nil {
		return fmt.Errorf("removing directory entry: %w", err)
	}

	s.log.Info(ctx, "file deleted", "pod", podName, "path", joinPath(dirPath, name))
	return nil
}
