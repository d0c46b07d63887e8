package canto

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GetContentDetails returns the details of an image or document
func (c *Client) GetContentDetails(ctx context.Context, scheme, id string) (*Asset, error) {
	var asset Asset
	if err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(scheme)+"/"+url.PathEscape(id), nil, nil, &asset); err != nil {
		return nil, err
	}
	if asset.Scheme == "" {
		asset.Scheme = scheme
	}
	return &asset, nil
}

// Search queries assets across the library
func (c *Client) Search(ctx context.Context, r SearchRequest) (*ListResponse, error) {
	query := url.Values{}
	if r.Keyword != "" {
		query.Set("keyword", r.Keyword)
	}
	if len(r.Tags) > 0 {
		query.Set("tags", strings.Join(r.Tags, "|"))
	}
	if len(r.Keywords) > 0 {
		query.Set("keywords", strings.Join(r.Keywords, "|"))
	}
	if r.SearchInField != "" {
		query.Set("searchInField", r.SearchInField)
	}
	if len(r.Schemes) > 0 {
		query.Set("scheme", strings.Join(r.Schemes, "|"))
	}
	if r.Approval != "" {
		query.Set("approval", r.Approval)
	}
	query.Set("start", strconv.Itoa(r.Start))
	query.Set("limit", strconv.Itoa(clampLimit(r.Limit)))

	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, "/search", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenameContent renames an asset
func (c *Client) RenameContent(ctx context.Context, r RenameContentRequest) error {
	body := map[string]string{"name": r.Name}
	return c.do(ctx, http.MethodPut, "/"+url.PathEscape(r.Scheme)+"/"+url.PathEscape(r.ID), nil, body, nil)
}

// BatchDeleteContent removes assets
func (c *Client) BatchDeleteContent(ctx context.Context, refs []Reference) error {
	body := map[string][]Reference{"contents": refs}
	return c.do(ctx, http.MethodDelete, "/batch/content", nil, body, nil)
}

// BatchUpdateProperties edits metadata properties of assets
func (c *Client) BatchUpdateProperties(ctx context.Context, r BatchUpdatePropertiesRequest) error {
	return c.do(ctx, http.MethodPut, "/batch/edit", nil, r, nil)
}
