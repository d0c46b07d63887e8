package files

// CreateFolderRequest names a new folder. A leading "A:" creates an album.
type CreateFolderRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// RenameFileRequest carries the new name of a file
type RenameFileRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// ExportMetadataRequest carries local metadata of a file for one language
type ExportMetadataRequest struct {
	Language int            `json:"language" binding:"min=0"`
	Data     map[string]any `json:"data" binding:"required"`
}
