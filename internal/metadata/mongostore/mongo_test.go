package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

const ns = "fileuploads.files"

func newTestStore(mt *mtest.T) *Store {
	s := New(mt.DB, "files")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStore_CreateFolder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates new folder", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		assert.NoError(t, s.CreateFolder(context.Background(), "docs"))
	})

	mt.Run("existing folder entity", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "f1"},
			{Key: "kind", Value: "folder"},
			{Key: "folder", Value: "docs"},
		}))

		err := s.CreateFolder(context.Background(), "docs")
		assert.ErrorIs(t, err, metadata.ErrFolderExists)
	})

	mt.Run("folder used by a file", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "a1"},
			{Key: "kind", Value: "file"},
			{Key: "folder", Value: "docs"},
			{Key: "filename", Value: "a.txt"},
		}))

		err := s.CreateFolder(context.Background(), "docs")
		assert.ErrorIs(t, err, metadata.ErrFolderExists)
	})

	mt.Run("duplicate key on insert", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
		)

		err := s.CreateFolder(context.Background(), "docs")
		assert.ErrorIs(t, err, metadata.ErrFolderExists)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "boom",
		}))

		err := s.CreateFolder(context.Background(), "docs")
		require.Error(t, err)
		assert.NotErrorIs(t, err, metadata.ErrFolderExists)
	})
}

func TestStore_ListFolders(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns sorted distinct names", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"docs", "default", ""}},
		))

		names, err := s.ListFolders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"default", "docs"}, names)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{}},
		))

		names, err := s.ListFolders(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, names)
		assert.Empty(t, names)
	})
}

func TestStore_ListFolderFiles(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes file records", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a"}, {Key: "kind", Value: "file"}, {Key: "folder", Value: "docs"}, {Key: "filename", Value: "a.txt"}},
			bson.D{{Key: "_id", Value: "b"}, {Key: "kind", Value: "file"}, {Key: "folder", Value: "docs"}, {Key: "filename", Value: "b.pdf"}},
		))

		files, err := s.ListFolderFiles(context.Background(), "docs")
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Filename)
		assert.Equal(t, "b.pdf", files[1].Filename)
	})

	mt.Run("unknown folder is an empty list", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		files, err := s.ListFolderFiles(context.Background(), "other")
		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)
	})
}

func TestStore_FindFile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "a"},
			{Key: "kind", Value: "file"},
			{Key: "folder", Value: "docs"},
			{Key: "filename", Value: "a.txt"},
			{Key: "contentType", Value: "text/plain"},
			{Key: "data", Value: []byte("hello")},
		}))

		entry, err := s.FindFile(context.Background(), "docs", "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "text/plain", entry.ContentType)
		assert.Equal(t, []byte("hello"), entry.Data)
		assert.Equal(t, models.KindFile, entry.Kind)
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := s.FindFile(context.Background(), "docs", "missing.txt")
		assert.ErrorIs(t, err, metadata.ErrNotFound)
	})
}

func TestStore_InsertFile(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id kind and timestamp", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		entry := &models.Entry{Folder: "docs", Filename: "a.txt", ContentType: "text/plain"}
		require.NoError(t, s.InsertFile(context.Background(), entry))
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, models.KindFile, entry.Kind)
		assert.Equal(t, s.now(), entry.CreatedAt)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		s := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		err := s.InsertFile(context.Background(), &models.Entry{Filename: "a.txt"})
		assert.Error(t, err)
	})
}
