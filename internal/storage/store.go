// Package storage holds uploaded file bytes, either on disk or inline on the
// metadata record.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

const (
	ModeDisk   = "disk"
	ModeInline = "inline"
)

var (
	ErrTooLarge    = errors.New("blob too large")
	ErrBlobMissing = errors.New("blob missing")
	ErrInvalidName = errors.New("invalid blob name")
	ErrCommitted   = errors.New("blob already committed")
)

// BlobStore defines the interface for blob storage.
type BlobStore interface {
	// Stage copies r to a location that is not yet visible under name.
	Stage(ctx context.Context, name string, r io.Reader) (Staged, error)
	// Open returns the original bytes of a file entry.
	Open(ctx context.Context, e *models.Entry) (io.ReadCloser, error)
}

// Staged is a blob written but not yet committed.
type Staged interface {
	// Apply records size, hash and the blob location on the entry.
	Apply(e *models.Entry)
	// Commit makes the blob visible under its name.
	Commit() error
	// Discard drops an uncommitted blob. It is a no-op after Commit.
	Discard() error
}

// validateName rejects anything that is not a single path element.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
