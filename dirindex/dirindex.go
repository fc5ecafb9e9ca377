// Package dirindex provides the directory-index collaborator: the namespace
// of leaf names visible under each directory of a pod. Entries are advisory
// pointers into the feed namespace; removing one is a logical removal only
// and never erases published content.
package dirindex

import (
	"context"

	"github.com/asabya/fdp-storage/account"
)

// Entry is one visible name inside a directory.
type Entry struct {
	Name   string
	IsFile bool
}

// Index is the directory collaborator. AddEntry and RemoveEntry are
// idempotent: re-adding an existing entry or removing an absent one is not
// an error.
type Index interface {
	AddEntry(ctx context.Context, owner account.Address, dirPath, name string, isFile bool) error
	RemoveEntry(ctx context.Context, owner account.Address, dirPath, name string, isFile bool) error
	List(ctx context.Context, owner account.Address, dirPath string) ([]Entry, error)
}
