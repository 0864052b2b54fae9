package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

// EncodingZstd marks inline data compressed with zstd.
const EncodingZstd = "zstd"

// DefaultMaxInlineBytes keeps a record under the 16 MiB BSON document limit.
const DefaultMaxInlineBytes = 15 << 20

// InlineStore keeps blob bytes on the metadata record itself.
type InlineStore struct {
	maxBytes int64
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

var _ BlobStore = (*InlineStore)(nil)

// NewInlineStore creates an inline store. A maxBytes <= 0 selects
// DefaultMaxInlineBytes. When compress is set new blobs are stored zstd
// encoded; stored blobs are decoded according to their own encoding.
func NewInlineStore(maxBytes int64, compress bool) (*InlineStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInlineBytes
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	s := &InlineStore{maxBytes: maxBytes, decoder: decoder}
	if compress {
		s.encoder, err = zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
	}
	return s, nil
}

// Stage reads r fully into memory.
func (s *InlineStore) Stage(ctx context.Context, name string, r io.Reader) (Staged, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}

	sum := sha256.Sum256(data)
	blob := &inlineBlob{
		size: int64(len(data)),
		sum:  hex.EncodeToString(sum[:]),
		data: data,
	}
	if s.encoder != nil {
		blob.data = s.encoder.EncodeAll(data, make([]byte, 0, len(data)))
		blob.encoding = EncodingZstd
	}
	return blob, nil
}

// Open returns the inline bytes of e. Entries written in disk mode carry a
// BlobRef and no data, and report ErrBlobMissing.
func (s *InlineStore) Open(ctx context.Context, e *models.Entry) (io.ReadCloser, error) {
	if e.BlobRef != "" {
		return nil, fmt.Errorf("blob %q is stored on disk: %w", e.BlobRef, ErrBlobMissing)
	}
	switch e.Encoding {
	case "":
		return io.NopCloser(bytes.NewReader(e.Data)), nil
	case EncodingZstd:
		data, err := s.decoder.DecodeAll(e.Data, nil)
		if err != nil {
			return nil, fmt.Errorf("decoding blob %q: %w", e.Filename, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	default:
		return nil, fmt.Errorf("blob %q: unknown encoding %q", e.Filename, e.Encoding)
	}
}

// Close releases the codec resources.
func (s *InlineStore) Close() {
	if s.encoder != nil {
		s.encoder.Close()
	}
	s.decoder.Close()
}

type inlineBlob struct {
	size     int64
	sum      string
	data     []byte
	encoding string
}

func (b *inlineBlob) Apply(e *models.Entry) {
	e.Data = b.data
	if e.Data == nil {
		e.Data = []byte{}
	}
	e.Encoding = b.encoding
	e.Size = b.size
	e.Sha256 = b.sum
	e.BlobRef = ""
}

func (b *inlineBlob) Commit() error { return nil }

func (b *inlineBlob) Discard() error {
	b.data = nil
	return nil
}
