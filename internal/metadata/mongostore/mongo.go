// Package mongostore keeps folder and file entries in one MongoDB collection,
// discriminated by the "kind" field.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

// DefaultDatabase is used when the connection string names no database.
const DefaultDatabase = "fileuploads"

// Connect opens a client for dsn, pings the primary and returns the database
// named in the connection string.
func Connect(ctx context.Context, dsn string, opts ...*options.ClientOptions) (*mongo.Database, error) {
	connDSN, err := connstring.ParseAndValidate(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mongodb uri: %w", err)
	}

	clientOpts := []*options.ClientOptions{
		options.Client().ApplyURI(connDSN.String()),
		options.Client().SetConnectTimeout(10 * time.Second),
		options.Client().SetServerSelectionTimeout(10 * time.Second),
	}
	clientOpts = append(clientOpts, opts...)

	client, err := mongo.Connect(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("connecting mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	name := connDSN.Database
	if name == "" {
		name = DefaultDatabase
	}
	return client.Database(name), nil
}

// Store implements metadata.Store on a MongoDB collection.
type Store struct {
	db         *mongo.Database
	collection string
	now        func() time.Time
}

var _ metadata.Store = (*Store)(nil)

// New creates a store over db.collection.
func New(db *mongo.Database, collection string) *Store {
	return &Store{
		db:         db,
		collection: collection,
		now:        time.Now,
	}
}

func (s *Store) coll() *mongo.Collection {
	return s.db.Collection(s.collection)
}

// EnsureIndexes creates the unique folder index and the lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "folder", Value: 1}},
			Options: options.Index().
				SetName("uniq_folder_entity").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"kind": models.KindFolder}),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "folder", Value: 1}},
			Options: options.Index().SetName("kind_folder"),
		},
		{
			Keys:    bson.D{{Key: "filename", Value: 1}},
			Options: options.Index().SetName("filename"),
		},
	})
	if err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}
	return nil
}

func (s *Store) CreateFolder(ctx context.Context, name string) error {
	// Folders that exist only through uploads count as taken.
	err := s.coll().FindOne(ctx, bson.M{"folder": name}).Err()
	if err == nil {
		return metadata.ErrFolderExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("finding folder %q: %w", name, err)
	}

	entry := models.NewFolder(name, s.now())
	entry.ID = primitive.NewObjectID().Hex()
	if _, err := s.coll().InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return metadata.ErrFolderExists
		}
		return fmt.Errorf("inserting folder %q: %w", name, err)
	}
	return nil
}

func (s *Store) ListFolders(ctx context.Context) ([]string, error) {
	values, err := s.coll().Distinct(ctx, "folder", bson.M{
		"folder": bson.M{"$exists": true, "$ne": ""},
	})
	if err != nil {
		return nil, fmt.Errorf("distinct folders: %w", err)
	}

	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ListFolderFiles(ctx context.Context, folder string) ([]*models.Entry, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"filename": 1, "folder": 1, "kind": 1, "createdAt": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	return s.find(ctx, bson.M{"kind": models.KindFile, "folder": folder}, findOptions)
}

func (s *Store) ListFiles(ctx context.Context) ([]*models.Entry, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	return s.find(ctx, bson.M{"kind": models.KindFile}, findOptions)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Entry, error) {
	cursor, err := s.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding files: %w", err)
	}
	defer cursor.Close(ctx)

	results := make([]*models.Entry, 0)
	for cursor.Next(ctx) {
		var res models.Entry
		if err := cursor.Decode(&res); err != nil {
			return nil, fmt.Errorf("decoding file: %w", err)
		}
		results = append(results, &res)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return results, nil
}

func (s *Store) InsertFile(ctx context.Context, e *models.Entry) error {
	e.Kind = models.KindFile
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	if _, err := s.coll().InsertOne(ctx, e); err != nil {
		return fmt.Errorf("inserting file %q: %w", e.Filename, err)
	}
	return nil
}

func (s *Store) FindFile(ctx context.Context, folder, filename string) (*models.Entry, error) {
	filter := bson.M{"kind": models.KindFile, "filename": filename}
	if folder != "" {
		filter["folder"] = folder
	}

	var entry models.Entry
	err := s.coll().FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, metadata.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding file %q: %w", filename, err)
	}
	return &entry, nil
}

func (s *Store) DeleteFile(ctx context.Context, filename string) error {
	_, err := s.coll().DeleteOne(ctx, bson.M{"kind": models.KindFile, "filename": filename})
	if err != nil {
		return fmt.Errorf("deleting file %q: %w", filename, err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
