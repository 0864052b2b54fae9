// mock_blobs.go - In-memory blob store for testing
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
	"github.com/OdochHerbert/dropbox-clone/internal/storage"
)

// MockBlobs implements storage.BlobStore in memory.
type MockBlobs struct {
	mu        sync.RWMutex
	committed map[string][]byte

	StageErr  error
	CommitErr error
	OpenErr   error

	Staged    int
	Discarded int
}

var _ storage.BlobStore = (*MockBlobs)(nil)

// NewMockBlobs creates an empty mock blob store.
func NewMockBlobs() *MockBlobs {
	return &MockBlobs{committed: make(map[string][]byte)}
}

func (m *MockBlobs) Stage(ctx context.Context, name string, r io.Reader) (storage.Staged, error) {
	if m.StageErr != nil {
		return nil, m.StageErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Staged++
	m.mu.Unlock()
	return &mockStaged{store: m, name: name, data: data}, nil
}

func (m *MockBlobs) Open(ctx context.Context, e *models.Entry) (io.ReadCloser, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.committed[e.BlobRef]
	if !ok {
		return nil, fmt.Errorf("blob %q: %w", e.BlobRef, storage.ErrBlobMissing)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Has reports whether a blob was committed under name.
func (m *MockBlobs) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.committed[name]
	return ok
}

// Count returns the number of committed blobs.
func (m *MockBlobs) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.committed)
}

type mockStaged struct {
	store *MockBlobs
	name  string
	data  []byte
	done  bool
}

func (s *mockStaged) Apply(e *models.Entry) {
	e.BlobRef = s.name
	e.Size = int64(len(s.data))
}

func (s *mockStaged) Commit() error {
	if s.store.CommitErr != nil {
		return s.store.CommitErr
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.committed[s.name] = s.data
	s.done = true
	return nil
}

func (s *mockStaged) Discard() error {
	if s.done {
		return nil
	}
	s.done = true
	s.store.mu.Lock()
	s.store.Discarded++
	s.store.mu.Unlock()
	return nil
}
