package upload

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OdochHerbert/dropbox-clone/internal/testutil"
)

func newTestManager() (*Manager, *testutil.MockMetadata, *testutil.MockBlobs) {
	meta := testutil.NewMockMetadata()
	blobs := testutil.NewMockBlobs()
	m := NewManager(meta, blobs, nil)
	m.newToken = func() string { return "tok" }
	return m, meta, blobs
}

func TestGenerateFilename(t *testing.T) {
	tests := []struct {
		original string
		want     string
	}{
		{"a.txt", "tok.txt"},
		{"archive.tar.gz", "tok.gz"},
		{"README", "tok"},
		{"trailing.", "tok"},
		{`weird.a\b`, "tok"},
		{"space.t xt", "tok"},
		{"", "tok"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateFilename("tok", tt.original))
		})
	}
}

func TestRandomToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := randomToken()
		require.Len(t, tok, 32)
		require.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestManager_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("stores blob and record", func(t *testing.T) {
		m, meta, blobs := newTestManager()

		e, err := m.Save(ctx, Request{
			Folder:       "docs",
			OriginalName: "a.txt",
			ContentType:  "text/plain",
			Body:         strings.NewReader("hello"),
		})
		require.NoError(t, err)

		assert.Equal(t, "tok.txt", e.Filename)
		assert.Equal(t, "docs", e.Folder)
		assert.Equal(t, int64(5), e.Size)
		assert.True(t, blobs.Has("tok.txt"))

		got, err := meta.FindFile(ctx, "docs", "tok.txt")
		require.NoError(t, err)
		assert.Equal(t, "text/plain", got.ContentType)
		assert.Equal(t, "tok.txt", got.BlobRef)
	})

	t.Run("stage failure writes nothing", func(t *testing.T) {
		m, meta, blobs := newTestManager()
		blobs.StageErr = errors.New("disk full")

		_, err := m.Save(ctx, Request{OriginalName: "a.txt", Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, blobs.StageErr)
		assert.Zero(t, meta.FileCount())
		assert.Zero(t, blobs.Count())
	})

	t.Run("insert failure discards blob", func(t *testing.T) {
		m, meta, blobs := newTestManager()
		meta.InsertErr = errors.New("store down")

		_, err := m.Save(ctx, Request{OriginalName: "a.txt", Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, meta.InsertErr)
		assert.Zero(t, blobs.Count())
		assert.Equal(t, 1, blobs.Discarded)
		assert.Empty(t, meta.Deleted)
	})

	t.Run("commit failure deletes record", func(t *testing.T) {
		m, meta, blobs := newTestManager()
		blobs.CommitErr = errors.New("rename failed")

		_, err := m.Save(ctx, Request{OriginalName: "a.txt", Body: strings.NewReader("x")})
		assert.ErrorIs(t, err, blobs.CommitErr)
		assert.Equal(t, []string{"tok.txt"}, meta.Deleted)
		assert.Zero(t, meta.FileCount())
		assert.Equal(t, 1, blobs.Discarded)
	})

	t.Run("compensation runs on cancelled context", func(t *testing.T) {
		m, meta, blobs := newTestManager()
		blobs.CommitErr = errors.New("rename failed")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := m.Save(cctx, Request{OriginalName: "a.txt", Body: strings.NewReader("x")})
		assert.Error(t, err)
		assert.Equal(t, []string{"tok.txt"}, meta.Deleted)
	})
}
