package files

import (
	"strings"

	"github.com/jacobsenj/canto-fal/internal/dam"
	"github.com/jacobsenj/canto-fal/internal/driver"
	"github.com/jacobsenj/canto-fal/internal/utils"

	"github.com/go-playground/validator/v10"
)

// BaseResponse represents the base structure for all API responses
type BaseResponse struct {
	Code   int16  `json:"code"`
	Detail string `json:"detail"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	BaseResponse
	Error string `json:"error,omitempty"`
}

// FolderResponse carries one folder
type FolderResponse struct {
	BaseResponse
	Folder driver.FolderInfo `json:"folder"`
}

// FolderListResponse carries one page of folders
type FolderListResponse struct {
	BaseResponse
	Folders []driver.FolderInfo `json:"folders"`
	Start   int                 `json:"start"`
	Limit   int                 `json:"limit"`
	Total   int                 `json:"total"`
}

// FileResponse carries one file
type FileResponse struct {
	BaseResponse
	File driver.FileInfo `json:"file"`
}

// FileListResponse carries one page of files
type FileListResponse struct {
	BaseResponse
	Files []driver.FileInfo `json:"files"`
	Start int               `json:"start"`
	Limit int               `json:"limit"`
	Total int               `json:"total"`
}

// IdentifierResponse carries the identifier of a created or changed resource
type IdentifierResponse struct {
	BaseResponse
	Identifier string `json:"identifier"`
}

// URLResponse carries the public URL of a file
type URLResponse struct {
	BaseResponse
	URL string `json:"url"`
}

// TreeResponse carries the folder tree of a storage
type TreeResponse struct {
	BaseResponse
	Tree dam.Tree `json:"tree"`
}

// MetadataResponse reports whether metadata reached the remote asset
type MetadataResponse struct {
	BaseResponse
	Exported bool `json:"exported"`
}

func newBase(code int16) BaseResponse {
	return BaseResponse{
		Code:   code,
		Detail: "Success with requestId " + utils.GenerateShortID(),
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string, code int16) ErrorResponse {
	return ErrorResponse{
		BaseResponse: BaseResponse{
			Code:   code,
			Detail: "Error with requestId " + utils.GenerateShortID(),
		},
		Error: message,
	}
}

// NewValidationError creates a validation error response
func NewValidationError(err error, code int16) ErrorResponse {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		full := errs[0].Error()
		parts := strings.SplitN(full, "Error:", 2)
		message := full
		if len(parts) == 2 {
			message = strings.TrimSpace(parts[1])
		}
		return NewErrorResponse(message, code)
	}
	return NewErrorResponse("Invalid request format", code)
}

func NewFolderResponse(folder driver.FolderInfo, code int16) FolderResponse {
	return FolderResponse{BaseResponse: newBase(code), Folder: folder}
}

func NewFolderListResponse(folders []driver.FolderInfo, start, limit, total int, code int16) FolderListResponse {
	return FolderListResponse{BaseResponse: newBase(code), Folders: folders, Start: start, Limit: limit, Total: total}
}

func NewFileResponse(file driver.FileInfo, code int16) FileResponse {
	return FileResponse{BaseResponse: newBase(code), File: file}
}

func NewFileListResponse(files []driver.FileInfo, start, limit, total int, code int16) FileListResponse {
	return FileListResponse{BaseResponse: newBase(code), Files: files, Start: start, Limit: limit, Total: total}
}

func NewIdentifierResponse(id string, code int16) IdentifierResponse {
	return IdentifierResponse{BaseResponse: newBase(code), Identifier: id}
}

func NewURLResponse(url string, code int16) URLResponse {
	return URLResponse{BaseResponse: newBase(code), URL: url}
}

func NewTreeResponse(tree dam.Tree, code int16) TreeResponse {
	if tree == nil {
		tree = dam.Tree{}
	}
	return TreeResponse{BaseResponse: newBase(code), Tree: tree}
}

func NewMetadataResponse(exported bool, code int16) MetadataResponse {
	return MetadataResponse{BaseResponse: newBase(code), Exported: exported}
}
