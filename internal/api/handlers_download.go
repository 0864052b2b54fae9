// handlers_download.go - File download handler
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/storage"
)

const defaultContentType = "application/octet-stream"

// DownloadHandlerImpl implements the DownloadHandler interface
type DownloadHandlerImpl struct {
	meta   metadata.Store
	blobs  storage.BlobStore
	logger *zap.Logger
}

// NewDownloadHandler creates a new download handler instance
func NewDownloadHandler(meta metadata.Store, blobs storage.BlobStore, logger *zap.Logger) DownloadHandler {
	return &DownloadHandlerImpl{
		meta:   meta,
		blobs:  blobs,
		logger: orNop(logger),
	}
}

// HandleDownload streams a file by exact filename and, on the folder-aware
// route, exact folder.
func (h *DownloadHandlerImpl) HandleDownload(c echo.Context) error {
	ctx := c.Request().Context()
	folder, scoped := folderParam(c)
	filename := pathParam(c, "filename")
	if scoped && folder == "" {
		return NewNotFoundError(msgFileNotFound)
	}

	e, err := h.meta.FindFile(ctx, folder, filename)
	if errors.Is(err, metadata.ErrNotFound) {
		return NewNotFoundError(msgFileNotFound)
	}
	if err != nil {
		return NewInternalError(msgDownloadFailed, err)
	}

	// open before any header goes out so a missing blob is still a clean 500
	rc, err := h.blobs.Open(ctx, e)
	if err != nil {
		return NewInternalError(msgDownloadFailed, err)
	}
	defer rc.Close()

	contentType := e.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, "attachment; filename="+e.Filename)
	if e.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(e.Size, 10))
	}

	h.logger.Info("file download",
		zap.String("folder", e.Folder),
		zap.String("filename", e.Filename),
	)
	if err := c.Stream(http.StatusOK, contentType, rc); err != nil {
		h.logger.Warn("download interrupted",
			zap.String("filename", e.Filename),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// pathParam returns a route parameter, unescaping it when the request path
// carried escapes the router kept.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// folderParam returns the folderName parameter and whether the matched route
// declares one. An empty segment on such a route never means "any folder".
func folderParam(c echo.Context) (string, bool) {
	for _, name := range c.ParamNames() {
		if name == "folderName" {
			return pathParam(c, name), true
		}
	}
	return "", false
}
