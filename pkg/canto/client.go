// Package canto is a small typed client for the Canto REST API.
package canto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1"
	maxErrorBody   = 512
)

// Options configures a Client
type Options struct {
	BaseURL    string
	OAuthURL   string
	AppID      string
	AppSecret  string
	HTTPClient *http.Client
}

// Client talks to one Canto tenant
type Client struct {
	baseURL   string
	oauthURL  string
	appID     string
	appSecret string
	http      *http.Client

	mu          sync.RWMutex
	accessToken string
}

// New creates a client for the tenant described by opts
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		oauthURL:  strings.TrimRight(opts.OAuthURL, "/"),
		appID:     opts.AppID,
		appSecret: opts.AppSecret,
		http:      httpClient,
	}
}

// SetAccessToken sets the bearer token sent with every API call
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// do sends a JSON request to the API and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s: %v", ErrInvalidResponse, method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, path, out)
}

func (c *Client) send(req *http.Request, path string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &ResponseError{Kind: ErrTransport, Method: req.Method, Path: path, Body: err.Error()}
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, req.Method, path); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ResponseError{Kind: ErrInvalidResponse, StatusCode: resp.StatusCode, Method: req.Method, Path: path, Body: err.Error()}
	}

	return nil
}

func checkResponse(resp *http.Response, method, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	kind := ErrInvalidResponse
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = ErrNotAuthorized
	}

	return &ResponseError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

func statusText(code int) string {
	return strconv.Itoa(code) + " " + http.StatusText(code)
}

// GetAuthorizedURLContent streams an asset URL with the bearer token attached.
// The caller closes the returned body.
func (c *Client) GetAuthorizedURLContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ResponseError{Kind: ErrTransport, Method: req.Method, Path: req.URL.Path, Body: err.Error()}
	}

	if err := checkResponse(resp, req.Method, req.URL.Path); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp.Body, nil
}
