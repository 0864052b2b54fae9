// Package upload stores an uploaded file as one logical transaction over the
// blob store and the metadata store.
package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
	"github.com/OdochHerbert/dropbox-clone/internal/storage"
)

// Request describes one uploaded file part.
type Request struct {
	Folder       string // empty in the flat variant
	OriginalName string
	ContentType  string
	Body         io.Reader
}

// Manager runs uploads: stage the blob, insert the record, commit the blob.
type Manager struct {
	meta     metadata.Store
	blobs    storage.BlobStore
	logger   *zap.Logger
	newToken func() string
}

// NewManager creates a new upload manager.
func NewManager(meta metadata.Store, blobs storage.BlobStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		meta:     meta,
		blobs:    blobs,
		logger:   logger,
		newToken: randomToken,
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateFilename joins token and the extension of the client's filename.
// Extensions that could escape the upload directory are dropped.
func GenerateFilename(token, original string) string {
	ext := filepath.Ext(original)
	if ext == "." || strings.ContainsAny(ext, "/\\ \t\r\n") {
		ext = ""
	}
	return token + ext
}

// Save stores one file. Nothing is left behind when it fails: a staged blob
// is discarded and a record whose blob could not be committed is deleted.
func (m *Manager) Save(ctx context.Context, req Request) (*models.Entry, error) {
	filename := GenerateFilename(m.newToken(), req.OriginalName)
	log := m.logger.With(zap.String("filename", filename), zap.String("folder", req.Folder))

	staged, err := m.blobs.Stage(ctx, filename, req.Body)
	if err != nil {
		return nil, fmt.Errorf("staging blob: %w", err)
	}

	e := &models.Entry{
		Kind:        models.KindFile,
		Folder:      req.Folder,
		Filename:    filename,
		ContentType: req.ContentType,
	}
	staged.Apply(e)

	if err := m.meta.InsertFile(ctx, e); err != nil {
		if derr := staged.Discard(); derr != nil {
			log.Warn("discarding staged blob", zap.Error(derr))
		}
		return nil, fmt.Errorf("inserting metadata: %w", err)
	}

	if err := staged.Commit(); err != nil {
		// the request may already be cancelled; compensation must still run
		if derr := m.meta.DeleteFile(context.WithoutCancel(ctx), filename); derr != nil {
			log.Error("deleting record of uncommitted blob", zap.Error(derr))
		}
		if derr := staged.Discard(); derr != nil {
			log.Warn("discarding staged blob", zap.Error(derr))
		}
		return nil, fmt.Errorf("committing blob: %w", err)
	}

	log.Info("file uploaded",
		zap.String("contentType", e.ContentType),
		zap.Int64("size", e.Size),
	)
	return e, nil
}
