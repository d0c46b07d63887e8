package driver

import (
	"context"
	"io"
	"net/http"
)

// Existence checks resources without fetching their content
type Existence interface {
	FileExists(ctx context.Context, fileIdentifier string) bool
	FolderExists(ctx context.Context, folderIdentifier string) bool
	IsFolderEmpty(ctx context.Context, folderIdentifier string) bool
	IsWithin(ctx context.Context, folderIdentifier, identifier string) bool
}

// Lister walks the folder structure
type Lister interface {
	RootLevelFolder() string
	DefaultFolder() string
	ParentFolderIdentifier(ctx context.Context, identifier string) string
	FilesInFolder(ctx context.Context, folderIdentifier string, opts ListOptions) []string
	FoldersInFolder(ctx context.Context, folderIdentifier string, opts ListOptions) []string
	CountFilesInFolder(ctx context.Context, folderIdentifier string) int
	CountFoldersInFolder(ctx context.Context, folderIdentifier string, recursive bool) int
	FileInFolder(ctx context.Context, fileName, folderIdentifier string) string
	FolderInFolder(ctx context.Context, folderName, folderIdentifier string) string
}

// Reader exposes file content
type Reader interface {
	PublicURL(ctx context.Context, identifier string) string
	FileContents(ctx context.Context, fileIdentifier string) ([]byte, error)
	StreamFile(ctx context.Context, fileIdentifier string, opts StreamOptions) (http.Header, io.ReadCloser, error)
	FileForLocalProcessing(ctx context.Context, fileIdentifier string) (string, error)
}

// Writer mutates the remote storage
type Writer interface {
	CreateFolder(ctx context.Context, newFolderName, parentFolderIdentifier string) (string, error)
	DeleteFolder(ctx context.Context, folderIdentifier string) bool
	AddFile(ctx context.Context, localFilePath, targetFolderIdentifier, newFileName string, removeOriginal bool) (string, error)
	CreateFile(ctx context.Context, fileName, parentFolderIdentifier string) (string, error)
	RenameFile(ctx context.Context, fileIdentifier, newName string) (string, error)
	DeleteFile(ctx context.Context, fileIdentifier string) bool

	RenameFolder(ctx context.Context, folderIdentifier, newName string) (map[string]string, error)
	MoveFolder(ctx context.Context, sourceFolderIdentifier, targetFolderIdentifier, newFolderName string) (map[string]string, error)
	CopyFolder(ctx context.Context, sourceFolderIdentifier, targetFolderIdentifier, newFolderName string) (bool, error)
	CopyFile(ctx context.Context, fileIdentifier, targetFolderIdentifier, fileName string) (string, error)
	MoveFile(ctx context.Context, fileIdentifier, targetFolderIdentifier, newFileName string) (string, error)
	ReplaceFile(ctx context.Context, fileIdentifier, localFilePath string) (bool, error)
	SetFileContents(ctx context.Context, fileIdentifier string, contents []byte) (int, error)
}

// Metadata describes resources
type Metadata interface {
	FileInfo(ctx context.Context, fileIdentifier string) FileInfo
	FolderInfo(ctx context.Context, folderIdentifier string) (FolderInfo, error)
	Permissions(identifier string) Permissions
	Hash(identifier, algorithm string) (string, error)
	HashIdentifier(identifier string) string
}

// Capabilities is the full contract consumed by the file services layer
type Capabilities interface {
	Existence
	Lister
	Reader
	Writer
	Metadata
	Close() error
}

var _ Capabilities = (*Driver)(nil)
