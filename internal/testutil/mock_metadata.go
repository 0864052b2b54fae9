// mock_metadata.go - In-memory metadata store for testing
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

// MockMetadata implements metadata.Store in memory. The Err fields force the
// matching operation to fail.
type MockMetadata struct {
	mu      sync.RWMutex
	folders map[string]*models.Entry
	files   []*models.Entry
	nextID  int

	CreateErr error
	ListErr   error
	InsertErr error
	FindErr   error
	DeleteErr error
	PingErr   error

	Deleted []string
	Closed  bool
}

var _ metadata.Store = (*MockMetadata)(nil)

// NewMockMetadata creates an empty mock store.
func NewMockMetadata() *MockMetadata {
	return &MockMetadata{folders: make(map[string]*models.Entry)}
}

func (m *MockMetadata) CreateFolder(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.folders[name]; ok {
		return metadata.ErrFolderExists
	}
	for _, f := range m.files {
		if f.Folder == name {
			return metadata.ErrFolderExists
		}
	}
	m.folders[name] = models.NewFolder(name, time.Now())
	return nil
}

func (m *MockMetadata) ListFolders(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	seen := make(map[string]bool)
	names := make([]string, 0)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range m.folders {
		add(name)
	}
	for _, f := range m.files {
		add(f.Folder)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockMetadata) ListFolderFiles(ctx context.Context, folder string) ([]*models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	files := make([]*models.Entry, 0)
	for _, f := range m.files {
		if f.Folder == folder {
			files = append(files, copyEntry(f, false))
		}
	}
	return files, nil
}

func (m *MockMetadata) ListFiles(ctx context.Context) ([]*models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	files := make([]*models.Entry, 0, len(m.files))
	for _, f := range m.files {
		files = append(files, copyEntry(f, false))
	}
	return files, nil
}

func (m *MockMetadata) InsertFile(ctx context.Context, e *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.nextID++
	e.Kind = models.KindFile
	if e.ID == "" {
		e.ID = generateTestID(m.nextID)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.files = append(m.files, copyEntry(e, true))
	return nil
}

func (m *MockMetadata) FindFile(ctx context.Context, folder, filename string) (*models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, f := range m.files {
		if f.Filename == filename && (folder == "" || f.Folder == folder) {
			return copyEntry(f, true), nil
		}
	}
	return nil, metadata.ErrNotFound
}

func (m *MockMetadata) DeleteFile(ctx context.Context, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Deleted = append(m.Deleted, filename)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	kept := m.files[:0]
	for _, f := range m.files {
		if f.Filename != filename {
			kept = append(kept, f)
		}
	}
	m.files = kept
	return nil
}

func (m *MockMetadata) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockMetadata) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// FileCount returns the number of stored file records.
func (m *MockMetadata) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// FolderCount returns the number of folder entities.
func (m *MockMetadata) FolderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.folders)
}

// Files returns copies of all stored file records, data included.
func (m *MockMetadata) Files() []*models.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.Entry, 0, len(m.files))
	for _, f := range m.files {
		files = append(files, copyEntry(f, true))
	}
	return files
}

func copyEntry(e *models.Entry, withData bool) *models.Entry {
	c := *e
	c.Data = nil
	if withData && e.Data != nil {
		c.Data = append([]byte{}, e.Data...)
	}
	return &c
}
