package canto

import (
	"context"
	"io"
)

// API is the set of Canto operations the adapter depends on
type API interface {
	AuthorizeWithClientCredentials(ctx context.Context, userID, scope string) (string, error)
	SetAccessToken(token string)

	GetTree(ctx context.Context, r TreeRequest) ([]Folder, error)
	GetFolderDetails(ctx context.Context, scheme, id string) (*Folder, error)
	ListAlbumContent(ctx context.Context, r ListAlbumContentRequest) (*ListResponse, error)
	CreateFolder(ctx context.Context, r CreateFolderRequest) (*Folder, error)
	CreateAlbum(ctx context.Context, r CreateFolderRequest) (*Folder, error)
	DeleteFolderOrAlbum(ctx context.Context, refs []Reference) error

	GetContentDetails(ctx context.Context, scheme, id string) (*Asset, error)
	Search(ctx context.Context, r SearchRequest) (*ListResponse, error)
	RenameContent(ctx context.Context, r RenameContentRequest) error
	BatchDeleteContent(ctx context.Context, refs []Reference) error
	BatchUpdateProperties(ctx context.Context, r BatchUpdatePropertiesRequest) error
	GetAuthorizedURLContent(ctx context.Context, rawURL string) (io.ReadCloser, error)

	GetUploadSetting(ctx context.Context) (*UploadSetting, error)
	UploadFile(ctx context.Context, r UploadFileRequest) error
	QueryUploadStatus(ctx context.Context) ([]UploadStatusItem, error)
}

// Ensure Client implements API
var _ API = (*Client)(nil)
