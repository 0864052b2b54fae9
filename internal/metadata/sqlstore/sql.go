// Package sqlstore keeps folders and files in two SQL tables. It runs on the
// sqlite3 and duckdb database/sql drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

const (
	DriverSQLite = "sqlite3"
	DriverDuckDB = "duckdb"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS folders (
		name       TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id           TEXT PRIMARY KEY,
		filename     TEXT NOT NULL UNIQUE,
		folder       TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT '',
		size         BIGINT NOT NULL DEFAULT 0,
		sha256       TEXT NOT NULL DEFAULT '',
		encoding     TEXT NOT NULL DEFAULT '',
		blob_ref     TEXT NOT NULL DEFAULT '',
		data         BLOB,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_files_folder ON files (folder)`,
}

const fileColumns = "id, filename, folder, content_type, size, sha256, encoding, blob_ref, created_at"

// Open opens a database handle for one of the supported drivers.
func Open(driverName, dsn string) (*sql.DB, error) {
	switch driverName {
	case DriverSQLite:
		db, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return db, nil
	case DriverDuckDB:
		connector, err := duckdb.NewConnector(dsn, nil)
		if err != nil {
			return nil, fmt.Errorf("creating duckdb connector: %w", err)
		}
		return sql.OpenDB(connector), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driverName)
	}
}

// Store implements metadata.Store on database/sql.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ metadata.Store = (*Store)(nil)

// New creates the tables when missing and returns the store.
func New(db *sql.DB) (*Store, error) {
	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) CreateFolder(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var taken bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM folders WHERE name = ?) OR EXISTS(SELECT 1 FROM files WHERE folder = ?)",
		name, name).Scan(&taken)
	if err != nil {
		return fmt.Errorf("checking folder %q: %w", name, err)
	}
	if taken {
		return metadata.ErrFolderExists
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO folders (name, created_at) VALUES (?, ?)", name, s.now()); err != nil {
		return fmt.Errorf("inserting folder %q: %w", name, err)
	}
	return tx.Commit()
}

func (s *Store) ListFolders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM folders UNION SELECT folder FROM files WHERE folder <> '' ORDER BY 1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) ListFolderFiles(ctx context.Context, folder string) ([]*models.Entry, error) {
	return s.queryFiles(ctx,
		"SELECT "+fileColumns+" FROM files WHERE folder = ? ORDER BY created_at", folder)
}

func (s *Store) ListFiles(ctx context.Context) ([]*models.Entry, error) {
	return s.queryFiles(ctx, "SELECT "+fileColumns+" FROM files ORDER BY created_at")
}

func (s *Store) queryFiles(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		e := &models.Entry{Kind: models.KindFile}
		err := rows.Scan(&e.ID, &e.Filename, &e.Folder, &e.ContentType, &e.Size,
			&e.Sha256, &e.Encoding, &e.BlobRef, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) InsertFile(ctx context.Context, e *models.Entry) error {
	e.Kind = models.KindFile
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	query := "INSERT INTO files (" + fileColumns + ", data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Filename,
		e.Folder,
		e.ContentType,
		e.Size,
		e.Sha256,
		e.Encoding,
		e.BlobRef,
		e.CreatedAt,
		e.Data,
	)
	if err != nil {
		return fmt.Errorf("inserting file %q: %w", e.Filename, err)
	}
	return nil
}

func (s *Store) FindFile(ctx context.Context, folder, filename string) (*models.Entry, error) {
	query := "SELECT " + fileColumns + ", data FROM files WHERE filename = ?"
	args := []any{filename}
	if folder != "" {
		query += " AND folder = ?"
		args = append(args, folder)
	}

	e := &models.Entry{Kind: models.KindFile}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&e.ID, &e.Filename, &e.Folder,
		&e.ContentType, &e.Size, &e.Sha256, &e.Encoding, &e.BlobRef, &e.CreatedAt, &e.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, metadata.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteFile removes a file row. A missing filename is not an error.
func (s *Store) DeleteFile(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE filename = ?", filename)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}
