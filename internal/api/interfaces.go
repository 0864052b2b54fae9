// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// FolderHandler handles folder operations (folder-aware variant)
type FolderHandler interface {
	HandleCreateFolder(c echo.Context) error
	HandleListFolders(c echo.Context) error
	HandleListFoldersMsgpack(c echo.Context) error
	HandleListFolderFiles(c echo.Context) error
}

// FilesHandler handles flat file listings (flat variant)
type FilesHandler interface {
	HandleListFiles(c echo.Context) error
	HandleListFilesMsgpack(c echo.Context) error
}

// UploadHandler handles file uploads
type UploadHandler interface {
	HandleUpload(c echo.Context) error
}

// DownloadHandler handles file downloads
type DownloadHandler interface {
	HandleDownload(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
