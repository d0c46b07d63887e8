package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jacobsenj/canto-fal/internal/dam"
	"github.com/jacobsenj/canto-fal/internal/driver"
	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/metadata"
	"github.com/jacobsenj/canto-fal/internal/token"
	"github.com/jacobsenj/canto-fal/internal/utils"
	"github.com/jacobsenj/canto-fal/pkg/canto"
	"github.com/jacobsenj/canto-fal/pkg/config"
	"github.com/jacobsenj/canto-fal/pkg/status"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Default constants for pagination and timeouts
const (
	defaultLimit   = 100
	maxLimit       = 1000
	defaultTimeout = 30 * time.Second
	// uploads wait for remote processing
	uploadTimeout = 2 * time.Minute
)

// Opener opens the driver of a storage, implemented by driver.Factory
type Opener interface {
	Open(ctx context.Context, storageID int) (*driver.Driver, error)
}

// Handler handles file and folder API requests
type Handler struct {
	drivers Opener
	tempDir string
	logger  *logger.Logger
}

// NewHandler creates a new files handler. Uploads are buffered in tempDir.
func NewHandler(drivers Opener, tempDir string, log *logger.Logger) *Handler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Handler{
		drivers: drivers,
		tempDir: tempDir,
		logger:  log,
	}
}

// handleServiceError maps service errors to appropriate HTTP responses
func (h *Handler) handleServiceError(err error, route string) (int, int16, string) {
	h.logger.SecureLog(err, "Error in "+route, route)

	statusCode := http.StatusInternalServerError
	apiStatus := status.StatusInternalServerError
	message := "Internal server error, please try again later"

	switch {
	// Bad request errors
	case errors.Is(err, identifier.ErrInvalidIdentifier),
		errors.Is(err, driver.ErrUploadTarget):
		statusCode = http.StatusBadRequest
		apiStatus = status.StatusBadRequest
		message = err.Error()

	// Not found errors
	case errors.Is(err, driver.ErrUnknownStorage),
		errors.Is(err, dam.ErrFolderNotFound),
		errors.Is(err, driver.ErrFileUnavailable):
		statusCode = http.StatusNotFound
		apiStatus = status.StatusNotFound
		message = err.Error()

	case errors.Is(err, driver.ErrUnsupportedOperation):
		statusCode = http.StatusNotImplemented
		apiStatus = status.StatusNotImplemented
		message = err.Error()

	// Remote side errors
	case errors.Is(err, token.ErrAuthorizationFailed),
		errors.Is(err, canto.ErrNotAuthorized),
		errors.Is(err, canto.ErrInvalidResponse),
		errors.Is(err, canto.ErrTransport),
		errors.Is(err, driver.ErrFolderCreation):
		statusCode = http.StatusBadGateway
		apiStatus = status.StatusExternalServiceError
		message = "Canto request failed"

	case errors.Is(err, dam.ErrMaterializationFailed):
		apiStatus = status.StatusFileSystemError

	// Configuration errors - keep as internal server errors
	case errors.Is(err, config.ErrInvalidConfiguration),
		errors.Is(err, metadata.ErrInvalidMapping):
	}

	return statusCode, apiStatus, message
}

// respondWithError sends a standardized error response
func (h *Handler) respondWithError(c *gin.Context, statusCode int, apiStatus int16, message string) {
	c.JSON(statusCode, NewErrorResponse(message, apiStatus))
}

func (h *Handler) fail(c *gin.Context, err error, route string) {
	statusCode, apiStatus, message := h.handleServiceError(err, route)
	h.respondWithError(c, statusCode, apiStatus, message)
}

// openDriver opens the storage named in the path. The driver is closed once the request is done.
func (h *Handler) openDriver(ctx context.Context, c *gin.Context, route string) (*driver.Driver, bool) {
	storageID, err := strconv.Atoi(c.Param("storage"))
	if err != nil || storageID <= 0 {
		h.respondWithError(c, http.StatusBadRequest, status.StatusBadRequest, "Invalid storage id")
		return nil, false
	}

	d, err := h.drivers.Open(ctx, storageID)
	if err != nil {
		h.fail(c, err, route)
		return nil, false
	}
	return d, true
}

func (h *Handler) closeDriver(d *driver.Driver) {
	if err := d.Close(); err != nil {
		h.logger.ForStorage(d.StorageID()).WithError(err).Warn("Releasing local copies failed")
	}
}

// identifierParam returns the combined identifier of the path, answering 400 when it is malformed
func (h *Handler) identifierParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !identifier.IsValid(id) {
		h.respondWithError(c, http.StatusBadRequest, status.StatusBadRequest, identifier.ErrInvalidIdentifier.Error())
		return "", false
	}
	return id, true
}

// getListOptions extracts and validates pagination and sorting parameters
func (h *Handler) getListOptions(c *gin.Context) driver.ListOptions {
	opts := driver.ListOptions{NumberOfItems: defaultLimit}

	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 {
		opts.NumberOfItems = min(parsed, maxLimit)
	}
	if parsed, err := strconv.Atoi(c.Query("start")); err == nil && parsed >= 0 {
		opts.Start = parsed
	}
	opts.Sort = c.Query("sort")
	opts.SortRev, _ = strconv.ParseBool(c.Query("desc"))
	opts.Recursive, _ = strconv.ParseBool(c.Query("recursive"))

	return opts
}

// GetFolder describes a folder
func (h *Handler) GetFolder(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "getFolder")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	info, err := d.FolderInfo(ctx, id)
	if err != nil {
		h.fail(c, err, "getFolder")
		return
	}
	c.JSON(http.StatusOK, NewFolderResponse(info, status.StatusOK))
}

// ListFolders lists one page of the folders below a folder
func (h *Handler) ListFolders(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}
	opts := h.getListOptions(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "listFolders")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	ids := d.FoldersInFolder(ctx, id, opts)
	folders := make([]driver.FolderInfo, 0, len(ids))
	for _, folderID := range ids {
		info, err := d.FolderInfo(ctx, folderID)
		if err != nil {
			h.logger.WithFields(logrus.Fields{"identifier": folderID}).WithError(err).Debug("Skipping undescribable folder")
			continue
		}
		folders = append(folders, info)
	}

	total := d.CountFoldersInFolder(ctx, id, opts.Recursive)
	c.JSON(http.StatusOK, NewFolderListResponse(folders, opts.Start, opts.NumberOfItems, total, status.StatusOK))
}

// ListFiles lists one page of the files of an album
func (h *Handler) ListFiles(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}
	opts := h.getListOptions(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "listFiles")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	ids := d.FilesInFolder(ctx, id, opts)
	files := make([]driver.FileInfo, 0, len(ids))
	for _, fileID := range ids {
		files = append(files, d.FileInfo(ctx, fileID))
	}

	total := d.CountFilesInFolder(ctx, id)
	c.JSON(http.StatusOK, NewFileListResponse(files, opts.Start, opts.NumberOfItems, total, status.StatusOK))
}

// GetTree returns the folder tree of a storage
func (h *Handler) GetTree(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "getTree")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	c.JSON(http.StatusOK, NewTreeResponse(d.Tree(ctx), status.StatusOK))
}

// CreateFolder creates a folder or album below a folder
func (h *Handler) CreateFolder(c *gin.Context) {
	parent, ok := h.identifierParam(c)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.SecureLog(err, "Invalid request format", "createFolder")
		c.JSON(http.StatusBadRequest, NewValidationError(err, status.StatusValidationFailed))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "createFolder")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	id, err := d.CreateFolder(ctx, req.Name, parent)
	if err != nil {
		h.fail(c, err, "createFolder")
		return
	}
	c.JSON(http.StatusCreated, NewIdentifierResponse(id, status.StatusCreated))
}

// DeleteFolder removes a folder or album
func (h *Handler) DeleteFolder(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "deleteFolder")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	if !d.DeleteFolder(ctx, id) {
		h.respondWithError(c, http.StatusBadGateway, status.StatusExternalServiceError, "Deleting the folder failed")
		return
	}
	c.JSON(http.StatusOK, NewIdentifierResponse(id, status.StatusDeleted))
}

// UploadFile uploads the multipart field "file" into an album.
// Uploads that are accepted but not yet processed are answered with 202.
func (h *Handler) UploadFile(c *gin.Context) {
	album, ok := h.identifierParam(c)
	if !ok {
		return
	}

	upload, err := c.FormFile("file")
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, status.StatusValidationFailed, "Missing file")
		return
	}
	name := filepath.Base(upload.Filename)
	if name == "." || name == string(filepath.Separator) {
		h.respondWithError(c, http.StatusBadRequest, status.StatusValidationFailed, "Invalid file name")
		return
	}

	local := utils.TempFileName(h.tempDir, "canto_upload_", filepath.Ext(name))
	if err := c.SaveUploadedFile(upload, local); err != nil {
		h.logger.SecureLog(err, "Buffering upload failed", "uploadFile")
		h.respondWithError(c, http.StatusInternalServerError, status.StatusFileSystemError, "Upload could not be stored")
		return
	}
	defer os.Remove(local)

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "uploadFile")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	id, err := d.AddFile(ctx, local, album, name, true)
	if errors.Is(err, driver.ErrUploadTimeout) {
		c.JSON(http.StatusAccepted, NewErrorResponse(err.Error(), status.StatusAccepted))
		return
	}
	if err != nil {
		h.fail(c, err, "uploadFile")
		return
	}
	c.JSON(http.StatusCreated, NewIdentifierResponse(id, status.StatusFileUploaded))
}

// GetFile describes a file. Files missing remotely are described by the fallback record.
func (h *Handler) GetFile(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "getFile")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	c.JSON(http.StatusOK, NewFileResponse(d.FileInfo(ctx, id), status.StatusOK))
}

// GetFileURL returns the public URL of a file
func (h *Handler) GetFileURL(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "getFileUrl")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	url := d.PublicURL(ctx, id)
	if url == "" {
		h.fail(c, driver.ErrFileUnavailable, "getFileUrl")
		return
	}
	c.JSON(http.StatusOK, NewURLResponse(url, status.StatusOK))
}

// StreamFile sends the content of a file, ?download=true asks the client to save it
func (h *Handler) StreamFile(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}
	asDownload, _ := strconv.ParseBool(c.Query("download"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "streamFile")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	header, body, err := d.StreamFile(ctx, id, driver.StreamOptions{AsDownload: asDownload})
	if err != nil {
		h.fail(c, err, "streamFile")
		return
	}
	defer body.Close()

	for key, values := range header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		h.logger.SecureLog(err, "Streaming interrupted", "streamFile")
	}
}

// RenameFile renames a file
func (h *Handler) RenameFile(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	var req RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.SecureLog(err, "Invalid request format", "renameFile")
		c.JSON(http.StatusBadRequest, NewValidationError(err, status.StatusValidationFailed))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "renameFile")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	renamed, err := d.RenameFile(ctx, id, req.Name)
	if err != nil {
		h.fail(c, err, "renameFile")
		return
	}
	c.JSON(http.StatusOK, NewIdentifierResponse(renamed, status.StatusUpdated))
}

// DeleteFile removes a file
func (h *Handler) DeleteFile(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "deleteFile")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	d.DeleteFile(ctx, id)
	c.JSON(http.StatusOK, NewIdentifierResponse(id, status.StatusDeleted))
}

// ExportMetadata pushes local metadata of a file to its remote asset
func (h *Handler) ExportMetadata(c *gin.Context) {
	id, ok := h.identifierParam(c)
	if !ok {
		return
	}

	var req ExportMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.SecureLog(err, "Invalid request format", "exportMetadata")
		c.JSON(http.StatusBadRequest, NewValidationError(err, status.StatusValidationFailed))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), defaultTimeout)
	defer cancel()

	d, ok := h.openDriver(ctx, c, "exportMetadata")
	if !ok {
		return
	}
	defer h.closeDriver(d)

	exported, err := d.ExportMetadata(ctx, id, req.Language, req.Data)
	if err != nil {
		h.fail(c, err, "exportMetadata")
		return
	}
	c.JSON(http.StatusOK, NewMetadataResponse(exported, status.StatusUpdated))
}
