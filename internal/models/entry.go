package models

import "time"

// Kind discriminates the two entities kept in the metadata store.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// DefaultFolder is assigned to uploads that do not name a folder.
const DefaultFolder = "default"

// Entry is the stored metadata document. A folder entry carries only Kind,
// Folder and CreatedAt; a file entry carries everything else as well.
type Entry struct {
	ID          string    `json:"-" bson:"_id,omitempty"`
	Kind        Kind      `json:"kind" bson:"kind"`
	Folder      string    `json:"folder,omitempty" bson:"folder,omitempty"`
	Filename    string    `json:"filename,omitempty" bson:"filename,omitempty"`
	ContentType string    `json:"contentType,omitempty" bson:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty" bson:"size,omitempty"`
	Sha256      string    `json:"sha256,omitempty" bson:"sha256,omitempty"`
	Encoding    string    `json:"-" bson:"encoding,omitempty"` // "" or "zstd", inline blobs only
	BlobRef     string    `json:"-" bson:"blobRef,omitempty"`  // on-disk blob name
	Data        []byte    `json:"-" bson:"data,omitempty"`     // inline blob bytes
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// NewFolder builds a folder entry.
func NewFolder(name string, now time.Time) *Entry {
	return &Entry{
		Kind:      KindFolder,
		Folder:    name,
		CreatedAt: now,
	}
}

// IsFolder reports whether the entry is a folder entity.
func (e *Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// IsInline reports whether the blob bytes live on the record itself.
func (e *Entry) IsInline() bool {
	return e.Kind == KindFile && e.BlobRef == ""
}

// FolderName is the listing projection of GET /folders.
type FolderName struct {
	Name string `json:"name" msgpack:"name"`
}

// FileName is the listing projection of GET /folder/:folderName.
type FileName struct {
	Filename string `json:"filename" msgpack:"filename"`
}

// FileMeta is the listing projection of GET /files.
type FileMeta struct {
	Filename    string    `json:"filename" msgpack:"filename"`
	Folder      string    `json:"folder,omitempty" msgpack:"folder,omitempty"`
	ContentType string    `json:"contentType" msgpack:"contentType"`
	Size        int64     `json:"size" msgpack:"size"`
	Sha256      string    `json:"sha256,omitempty" msgpack:"sha256,omitempty"`
	CreatedAt   time.Time `json:"createdAt" msgpack:"createdAt"`
}

// Meta projects a file entry to its listing form.
func (e *Entry) Meta() FileMeta {
	return FileMeta{
		Filename:    e.Filename,
		Folder:      e.Folder,
		ContentType: e.ContentType,
		Size:        e.Size,
		Sha256:      e.Sha256,
		CreatedAt:   e.CreatedAt,
	}
}
