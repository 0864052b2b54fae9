// handlers_upload.go - File upload handler
package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/OdochHerbert/dropbox-clone/internal/models"
	"github.com/OdochHerbert/dropbox-clone/internal/storage"
	"github.com/OdochHerbert/dropbox-clone/internal/upload"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	uploads *upload.Manager
	variant string
	logger  *zap.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(uploads *upload.Manager, variant string, logger *zap.Logger) UploadHandler {
	return &UploadHandlerImpl{
		uploads: uploads,
		variant: variant,
		logger:  orNop(logger),
	}
}

// HandleUpload stores the multipart part "file". In the folder-aware variant
// the optional field "folder" names its folder.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return NewBadRequestError(msgNoFile)
	}

	folder := ""
	if h.variant == VariantFolders {
		folder = c.FormValue("folder")
		if folder == "" {
			folder = models.DefaultFolder
		}
	}

	src, err := fh.Open()
	if err != nil {
		return NewInternalError(msgUploadFailed, err)
	}
	defer src.Close()

	e, err := h.uploads.Save(c.Request().Context(), upload.Request{
		Folder:       folder,
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get(echo.HeaderContentType),
		Body:         src,
	})
	if errors.Is(err, storage.ErrTooLarge) {
		return NewTooLargeError(err)
	}
	if err != nil {
		return NewInternalError(msgUploadFailed, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, downloadPath(folder, e.Filename))
	return c.String(http.StatusCreated, msgFileUploaded)
}

func downloadPath(folder, filename string) string {
	if folder == "" {
		return "/download/" + url.PathEscape(filename)
	}
	return "/download/" + url.PathEscape(folder) + "/" + url.PathEscape(filename)
}
