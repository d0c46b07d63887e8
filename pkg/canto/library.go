package canto

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type treeResponse struct {
	Results []Folder `json:"results"`
}

// GetTree returns the folder tree, all layers deep
func (c *Client) GetTree(ctx context.Context, r TreeRequest) ([]Folder, error) {
	path := "/tree"
	if r.FolderID != "" {
		path += "/" + url.PathEscape(r.FolderID)
	}

	query := url.Values{}
	query.Set("sortBy", orDefault(r.SortBy, SortByName))
	query.Set("sortDirection", orDefault(r.SortDirection, SortAscending))
	query.Set("layer", "-1")

	var resp treeResponse
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetFolderDetails returns a single folder or album
func (c *Client) GetFolderDetails(ctx context.Context, scheme, id string) (*Folder, error) {
	var folder Folder
	if err := c.do(ctx, http.MethodGet, "/info/"+url.PathEscape(scheme)+"/"+url.PathEscape(id), nil, nil, &folder); err != nil {
		return nil, err
	}
	if folder.Scheme == "" {
		folder.Scheme = scheme
	}
	return &folder, nil
}

// ListAlbumContent returns a page of the assets inside an album
func (c *Client) ListAlbumContent(ctx context.Context, r ListAlbumContentRequest) (*ListResponse, error) {
	query := url.Values{}
	query.Set("start", strconv.Itoa(r.Start))
	query.Set("limit", strconv.Itoa(clampLimit(r.Limit)))
	query.Set("sortBy", orDefault(r.SortBy, SortByTime))
	query.Set("sortDirection", orDefault(r.SortDirection, SortAscending))

	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, "/album/"+url.PathEscape(r.AlbumID), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateFolder creates a folder below r.ParentFolder
func (c *Client) CreateFolder(ctx context.Context, r CreateFolderRequest) (*Folder, error) {
	return c.create(ctx, "/folder", r)
}

// CreateAlbum creates an album below r.ParentFolder
func (c *Client) CreateAlbum(ctx context.Context, r CreateFolderRequest) (*Folder, error) {
	return c.create(ctx, "/album", r)
}

func (c *Client) create(ctx context.Context, path string, r CreateFolderRequest) (*Folder, error) {
	if r.ParentFolder != "" {
		path += "/" + url.PathEscape(r.ParentFolder)
	}

	var folder Folder
	if err := c.do(ctx, http.MethodPost, path, nil, r, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteFolderOrAlbum removes the given folders and albums
func (c *Client) DeleteFolderOrAlbum(ctx context.Context, refs []Reference) error {
	return c.do(ctx, http.MethodDelete, "/folder", nil, refs, nil)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
