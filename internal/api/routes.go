// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/storage"
	"github.com/OdochHerbert/dropbox-clone/internal/upload"
)

// Service variants. The folder-aware variant groups uploads into named
// folders; the flat variant has a single listing of files.
const (
	VariantFolders = "folders"
	VariantFlat    = "flat"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Meta    metadata.Store
	Blobs   storage.BlobStore
	Variant string
	Version string
	Logger  *zap.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Variant  string
	Health   HealthHandler
	Folder   FolderHandler
	Files    FilesHandler
	Upload   UploadHandler
	Download DownloadHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	logger := orNop(deps.Logger)
	variant := deps.Variant
	if variant == "" {
		variant = VariantFolders
	}
	uploads := upload.NewManager(deps.Meta, deps.Blobs, logger)

	return &Handlers{
		Variant:  variant,
		Health:   NewHealthHandler(deps.Version, deps.Meta),
		Folder:   NewFolderHandler(deps.Meta, logger),
		Files:    NewFilesHandler(deps.Meta),
		Upload:   NewUploadHandler(uploads, variant, logger),
		Download: NewDownloadHandler(deps.Meta, deps.Blobs, logger),
	}
}

// RegisterRoutes registers the routes of the configured variant
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)
	e.POST("/upload", handlers.Upload.HandleUpload)

	if handlers.Variant == VariantFlat {
		e.GET("/files", handlers.Files.HandleListFiles)
		e.GET("/files/msgpack", handlers.Files.HandleListFilesMsgpack)
		e.GET("/download/:filename", handlers.Download.HandleDownload)
		return
	}

	e.POST("/folder", handlers.Folder.HandleCreateFolder)
	e.GET("/folders", handlers.Folder.HandleListFolders)
	e.GET("/folders/msgpack", handlers.Folder.HandleListFoldersMsgpack)
	e.GET("/folder/:folderName", handlers.Folder.HandleListFolderFiles)
	e.GET("/download/:folderName/:filename", handlers.Download.HandleDownload)
}

// SetupMiddleware installs the error handler and request validator
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.HTTPErrorHandler = NewErrorHandler(logger)
	e.Validator = NewValidator()
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
