// handlers_files.go - Flat file listing handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

const mimeMsgpack = "application/msgpack"

// FilesHandlerImpl implements the FilesHandler interface
type FilesHandlerImpl struct {
	meta metadata.Store
}

// NewFilesHandler creates a new files handler instance
func NewFilesHandler(meta metadata.Store) FilesHandler {
	return &FilesHandlerImpl{meta: meta}
}

// HandleListFiles returns the metadata of every uploaded file
func (h *FilesHandlerImpl) HandleListFiles(c echo.Context) error {
	files, err := h.list(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// HandleListFilesMsgpack is HandleListFiles encoded as msgpack
func (h *FilesHandlerImpl) HandleListFilesMsgpack(c echo.Context) error {
	files, err := h.list(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(files)
	if err != nil {
		return NewInternalError(msgListFilesFailed, err)
	}
	return c.Blob(http.StatusOK, mimeMsgpack, data)
}

func (h *FilesHandlerImpl) list(c echo.Context) ([]models.FileMeta, error) {
	entries, err := h.meta.ListFiles(c.Request().Context())
	if err != nil {
		return nil, NewInternalError(msgListFilesFailed, err)
	}

	files := make([]models.FileMeta, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.Meta())
	}
	return files, nil
}
