package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

const tempDirName = ".tmp"

// LocalStore implements BlobStore using one flat directory. Folders are
// metadata only and never become subdirectories.
type LocalStore struct {
	uploadDir string
	tempDir   string
}

var _ BlobStore = (*LocalStore)(nil)

// NewLocalStore creates a new LocalStore, creating the directory if absent.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	tempDir := filepath.Join(uploadDir, tempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		tempDir:   tempDir,
	}, nil
}

// Stage writes r to a temp file, hashing while it copies.
func (s *LocalStore) Stage(ctx context.Context, name string, r io.Reader) (Staged, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath := filepath.Join(s.tempDir, uuid.New().String())
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &localBlob{
		name:      name,
		tmpPath:   tmpPath,
		finalPath: filepath.Join(s.uploadDir, name),
		size:      size,
		sum:       hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open opens the blob of e. Entries without a BlobRef fall back to the
// filename, which is how records written before blob refs were named.
func (s *LocalStore) Open(ctx context.Context, e *models.Entry) (io.ReadCloser, error) {
	ref := e.BlobRef
	if ref == "" {
		ref = e.Filename
	}
	if err := validateName(ref); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.uploadDir, ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", ref, ErrBlobMissing)
		}
		return nil, fmt.Errorf("opening blob %q: %w", ref, err)
	}
	return f, nil
}

// SweepTemp removes staged blobs older than maxAge. They are leftovers of
// uploads interrupted between Stage and Commit.
func (s *LocalStore) SweepTemp(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return 0, fmt.Errorf("reading temp directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.tempDir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

type localBlob struct {
	name      string
	tmpPath   string
	finalPath string
	size      int64
	sum       string
	committed bool
	discarded bool
}

func (b *localBlob) Apply(e *models.Entry) {
	e.BlobRef = b.name
	e.Size = b.size
	e.Sha256 = b.sum
	e.Data = nil
	e.Encoding = ""
}

func (b *localBlob) Commit() error {
	if b.committed {
		return ErrCommitted
	}
	if b.discarded {
		return fmt.Errorf("committing discarded blob %q", b.name)
	}
	if err := os.Rename(b.tmpPath, b.finalPath); err != nil {
		return fmt.Errorf("committing blob: %w", err)
	}
	b.committed = true
	return nil
}

func (b *localBlob) Discard() error {
	if b.committed || b.discarded {
		return nil
	}
	b.discarded = true
	if err := os.Remove(b.tmpPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing temp file: %w", err)
	}
	return nil
}
