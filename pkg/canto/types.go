package canto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Sort orders accepted by listing endpoints
const (
	SortByTime   = "time"
	SortByName   = "name"
	SortByScheme = "scheme"
	SortBySize   = "size"

	SortAscending  = "ascending"
	SortDescending = "descending"
)

// Upload processing states
const (
	StatusDone       = "Done"
	StatusProcessing = "Processing"
	StatusFailed     = "Failed"
)

// MaxListLimit is the largest page the listing endpoints return
const MaxListLimit = 1000

// FlexString accepts JSON strings and numbers
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// Int parses the value, 0 when it is not numeric
func (f FlexString) Int() int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// Reference points to a remote resource
type Reference struct {
	ID     string `json:"id"`
	Scheme string `json:"scheme"`
	Name   string `json:"name,omitempty"`
}

// Folder is a folder or album of the library tree
type Folder struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Scheme   string     `json:"scheme"`
	IDPath   string     `json:"idPath"`
	NamePath string     `json:"namePath,omitempty"`
	Time     string     `json:"time"`
	Created  string     `json:"created"`
	Size     FlexString `json:"size,omitempty"`
	Children []Folder   `json:"children,omitempty"`
}

// AssetURLs are the download locations of an asset
type AssetURLs struct {
	DirectURLOriginal string `json:"directUrlOriginal,omitempty"`
	DirectURLPreview  string `json:"directUrlPreview,omitempty"`
	Preview           string `json:"preview,omitempty"`
	Download          string `json:"download,omitempty"`
}

// AssetDefaults is the "default" metadata block of an asset
type AssetDefaults struct {
	Size         FlexString `json:"Size,omitempty"`
	DateModified string     `json:"Date modified,omitempty"`
	DateUploaded string     `json:"Date uploaded,omitempty"`
	ContentType  string     `json:"Content Type,omitempty"`
	Title        string     `json:"Title,omitempty"`
	Copyright    string     `json:"Copyright,omitempty"`
	Description  string     `json:"Description,omitempty"`
}

// Asset is an image or document
type Asset struct {
	ID             string        `json:"id"`
	Scheme         string        `json:"scheme"`
	Name           string        `json:"name"`
	Size           FlexString    `json:"size,omitempty"`
	Width          FlexString    `json:"width,omitempty"`
	Height         FlexString    `json:"height,omitempty"`
	Time           string        `json:"time,omitempty"`
	Description    string        `json:"description,omitempty"`
	Copyright      string        `json:"copyright,omitempty"`
	ApprovalStatus string        `json:"approvalStatus,omitempty"`
	Tag            []string      `json:"tag,omitempty"`
	Keyword        []string      `json:"keyword,omitempty"`
	URL            AssetURLs     `json:"url"`
	Default        AssetDefaults `json:"default"`
	RelatedAlbums  []Reference   `json:"relatedAlbums,omitempty"`
}

// ListResponse is a page of assets
type ListResponse struct {
	Found   int     `json:"found"`
	Results []Asset `json:"results"`
}

// TreeRequest lists the folder tree below FolderID, the whole library when empty
type TreeRequest struct {
	FolderID      string
	SortBy        string
	SortDirection string
}

// ListAlbumContentRequest pages through the assets of an album
type ListAlbumContentRequest struct {
	AlbumID       string
	Start         int
	Limit         int
	SortBy        string
	SortDirection string
}

// SearchRequest queries assets across the library
type SearchRequest struct {
	Keyword       string
	Tags          []string
	Keywords      []string
	SearchInField string
	Schemes       []string
	Approval      string
	Start         int
	Limit         int
}

// CreateFolderRequest creates a folder or album below ParentFolder
type CreateFolderRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ParentFolder string `json:"-"`
}

// RenameContentRequest renames an asset
type RenameContentRequest struct {
	Scheme string
	ID     string
	Name   string
}

// Property is a single metadata update of a batch edit
type Property struct {
	PropertyID    string `json:"propertyId"`
	PropertyValue string `json:"propertyValue"`
	Action        string `json:"action"`
	CustomField   bool   `json:"customField"`
}

// BatchUpdatePropertiesRequest edits properties of several assets at once
type BatchUpdatePropertiesRequest struct {
	Contents   []Reference `json:"contents"`
	Properties []Property  `json:"properties"`
}

// UploadSetting holds the pre-signed form used for uploads
type UploadSetting struct {
	URL    string
	Fields map[string]string
}

// UploadFileRequest uploads a local file into an album
type UploadFileRequest struct {
	LocalPath string
	FileName  string
	AlbumID   string
	Scheme    string
	Setting   UploadSetting
}

// UploadStatusItem is the processing state of one upload
type UploadStatusItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Scheme string `json:"scheme"`
	Status string `json:"status"`
}
