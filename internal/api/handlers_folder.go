// handlers_folder.go - Folder operation handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/OdochHerbert/dropbox-clone/internal/metadata"
	"github.com/OdochHerbert/dropbox-clone/internal/models"
)

// FolderHandlerImpl implements the FolderHandler interface
type FolderHandlerImpl struct {
	meta   metadata.Store
	logger *zap.Logger
}

// NewFolderHandler creates a new folder handler instance
func NewFolderHandler(meta metadata.Store, logger *zap.Logger) FolderHandler {
	return &FolderHandlerImpl{meta: meta, logger: orNop(logger)}
}

// HandleCreateFolder creates a folder entity from a JSON {folderName} body
func (h *FolderHandlerImpl) HandleCreateFolder(c echo.Context) error {
	var req createFolderRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError(msgFolderNameRequired)
	}
	if err := c.Validate(&req); err != nil {
		return NewBadRequestError(msgFolderNameRequired)
	}

	err := h.meta.CreateFolder(c.Request().Context(), req.FolderName)
	if errors.Is(err, metadata.ErrFolderExists) {
		return NewBadRequestError(msgFolderExists)
	}
	if err != nil {
		return NewInternalError(msgCreateFolderFailed, err)
	}

	h.logger.Info("folder created", zap.String("folder", req.FolderName))
	return c.String(http.StatusCreated, msgFolderCreated)
}

// HandleListFolders returns every distinct folder name as [{name}]
func (h *FolderHandlerImpl) HandleListFolders(c echo.Context) error {
	folders, err := h.folderNames(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, folders)
}

// HandleListFoldersMsgpack is HandleListFolders encoded as msgpack
func (h *FolderHandlerImpl) HandleListFoldersMsgpack(c echo.Context) error {
	folders, err := h.folderNames(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(folders)
	if err != nil {
		return NewInternalError(msgListFoldersFailed, err)
	}
	return c.Blob(http.StatusOK, mimeMsgpack, data)
}

func (h *FolderHandlerImpl) folderNames(c echo.Context) ([]models.FolderName, error) {
	names, err := h.meta.ListFolders(c.Request().Context())
	if err != nil {
		return nil, NewInternalError(msgListFoldersFailed, err)
	}

	folders := make([]models.FolderName, 0, len(names))
	for _, name := range names {
		folders = append(folders, models.FolderName{Name: name})
	}
	return folders, nil
}

// HandleListFolderFiles returns the files of one folder as [{filename}].
// An unknown folder is an empty list.
func (h *FolderHandlerImpl) HandleListFolderFiles(c echo.Context) error {
	folder := pathParam(c, "folderName")
	if folder == "" {
		return echo.ErrNotFound
	}

	entries, err := h.meta.ListFolderFiles(c.Request().Context(), folder)
	if err != nil {
		return NewInternalError(msgListFilesFailed, err)
	}

	files := make([]models.FileName, 0, len(entries))
	for _, e := range entries {
		files = append(files, models.FileName{Filename: e.Filename})
	}
	return c.JSON(http.StatusOK, files)
}
