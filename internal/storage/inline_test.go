package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

func TestInlineStore(t *testing.T) {
	ctx := context.Background()
	content := strings.Repeat("hello inline world ", 100)

	tests := []struct {
		name         string
		compress     bool
		wantEncoding string
	}{
		{name: "plain", compress: false, wantEncoding: ""},
		{name: "zstd", compress: true, wantEncoding: EncodingZstd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewInlineStore(0, tt.compress)
			require.NoError(t, err)
			defer store.Close()

			staged, err := store.Stage(ctx, "a.txt", strings.NewReader(content))
			require.NoError(t, err)
			require.NoError(t, staged.Commit())

			e := &models.Entry{Kind: models.KindFile, Filename: "a.txt"}
			staged.Apply(e)

			assert.Equal(t, tt.wantEncoding, e.Encoding)
			assert.Equal(t, int64(len(content)), e.Size)
			assert.Empty(t, e.BlobRef)
			assert.True(t, e.IsInline())
			if tt.compress {
				assert.Less(t, len(e.Data), len(content))
			} else {
				assert.Equal(t, []byte(content), e.Data)
			}

			rc, err := store.Open(ctx, e)
			require.NoError(t, err)
			assert.Equal(t, content, readAll(t, rc))
		})
	}
}

func TestInlineStore_TooLarge(t *testing.T) {
	store, err := NewInlineStore(4, false)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Stage(context.Background(), "a.txt", strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = store.Stage(context.Background(), "a.txt", strings.NewReader("hell"))
	assert.NoError(t, err)
}

func TestInlineStore_EmptyFile(t *testing.T) {
	store, err := NewInlineStore(0, false)
	require.NoError(t, err)
	defer store.Close()

	staged, err := store.Stage(context.Background(), "empty.txt", bytes.NewReader(nil))
	require.NoError(t, err)

	e := &models.Entry{Kind: models.KindFile}
	staged.Apply(e)
	assert.NotNil(t, e.Data)
	assert.Zero(t, e.Size)
}

func TestInlineStore_ReadsCompressedWithoutEncoder(t *testing.T) {
	ctx := context.Background()

	writer, err := NewInlineStore(0, true)
	require.NoError(t, err)
	defer writer.Close()

	staged, err := writer.Stage(ctx, "a.txt", strings.NewReader("compressed"))
	require.NoError(t, err)
	e := &models.Entry{Filename: "a.txt"}
	staged.Apply(e)

	reader, err := NewInlineStore(0, false)
	require.NoError(t, err)
	defer reader.Close()

	rc, err := reader.Open(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, "compressed", readAll(t, rc))
}

func TestInlineStore_OpenDiskEntry(t *testing.T) {
	store, err := NewInlineStore(0, false)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Open(context.Background(), &models.Entry{Filename: "a.txt", BlobRef: "a.txt", Size: 5})
	assert.ErrorIs(t, err, ErrBlobMissing)
}

func TestInlineStore_UnknownEncoding(t *testing.T) {
	store, err := NewInlineStore(0, false)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Open(context.Background(), &models.Entry{Filename: "a", Encoding: "brotli"})
	assert.Error(t, err)
}
