package driver

// FileInfo describes a remote asset
type FileInfo struct {
	Identifier        string   `json:"identifier"`
	IdentifierHash    string   `json:"identifierHash"`
	StorageID         int      `json:"storage"`
	Name              string   `json:"name"`
	Extension         string   `json:"extension"`
	MimeType          string   `json:"mimetype"`
	Size              int64    `json:"size"`
	Atime             int64    `json:"atime"`
	Mtime             int64    `json:"mtime"`
	Ctime             int64    `json:"ctime"`
	FolderIdentifiers []string `json:"folderIdentifiers"`
}

// FolderInfo describes a folder or album
type FolderInfo struct {
	Identifier string `json:"identifier"`
	StorageID  int    `json:"storage"`
	Name       string `json:"name"`
	Mtime      int64  `json:"mtime"`
	Ctime      int64  `json:"ctime"`
	IDPath     string `json:"idPath"`
}

// Permissions of a resource
type Permissions struct {
	Read  bool `json:"r"`
	Write bool `json:"w"`
}

// ListOptions pages and orders a listing.
// NumberOfItems 0 means unlimited, Sort is one of name, fileext, size or anything else for time.
type ListOptions struct {
	Start         int
	NumberOfItems int
	Recursive     bool
	Sort          string
	SortRev       bool
}

// StreamOptions customize StreamFile
type StreamOptions struct {
	AsDownload bool
	// FileName and MimeType override the values of the remote record when set
	FileName string
	MimeType string
}

// Fallback record served for assets that are missing remotely
const (
	fallbackFileName = "fallbackimage.jpg"
	fallbackFileSize = 1000
	rootFolderName   = "Canto"
)
