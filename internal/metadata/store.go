// Package metadata defines the persistent index of folders and uploaded files.
package metadata

import (
	"context"
	"errors"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrFolderExists = errors.New("folder already exists")
)

// Store is the metadata store. Implementations must be safe for concurrent use.
type Store interface {
	// CreateFolder adds a folder entity. It returns ErrFolderExists when a
	// folder entity with the same name is already present.
	CreateFolder(ctx context.Context, name string) error
	// ListFolders returns the distinct folder names of folder entities and
	// file records. The empty name is never included.
	ListFolders(ctx context.Context) ([]string, error)
	// ListFolderFiles returns the file records of one folder.
	ListFolderFiles(ctx context.Context, folder string) ([]*models.Entry, error)
	// ListFiles returns every file record without inline data.
	ListFiles(ctx context.Context) ([]*models.Entry, error)
	InsertFile(ctx context.Context, e *models.Entry) error
	// FindFile matches filename exactly and, when folder is not empty, folder too.
	FindFile(ctx context.Context, folder, filename string) (*models.Entry, error)
	DeleteFile(ctx context.Context, filename string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
