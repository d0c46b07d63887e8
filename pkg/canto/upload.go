package canto

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// GetUploadSetting fetches the pre-signed form used for uploads
func (c *Client) GetUploadSetting(ctx context.Context) (*UploadSetting, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, "/upload/setting", nil, nil, &raw); err != nil {
		return nil, err
	}

	setting := &UploadSetting{Fields: make(map[string]string, len(raw))}
	for key, value := range raw {
		s, ok := value.(string)
		if !ok {
			continue
		}
		if key == "url" {
			setting.URL = s
			continue
		}
		setting.Fields[key] = s
	}

	if setting.URL == "" {
		return nil, &ResponseError{Kind: ErrInvalidResponse, Method: http.MethodGet, Path: "/upload/setting", Body: "missing upload url"}
	}

	return setting, nil
}

// UploadFile posts a local file to the upload form of r.Setting
func (c *Client) UploadFile(ctx context.Context, r UploadFileRequest) error {
	file, err := os.Open(r.LocalPath)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	fileName := r.FileName
	if fileName == "" {
		fileName = filepath.Base(r.LocalPath)
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(form, file, fileName, r))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Setting.URL, pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	parsed, _ := url.Parse(r.Setting.URL)
	path := r.Setting.URL
	if parsed != nil {
		path = parsed.Path
	}

	return c.send(req, path, nil)
}

func writeUploadForm(form *multipart.Writer, file io.Reader, fileName string, r UploadFileRequest) error {
	for key, value := range r.Setting.Fields {
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}

	meta := map[string]string{
		"x-amz-meta-file_name": fileName,
		"x-amz-meta-tag":       "",
		"x-amz-meta-scheme":    orDefault(r.Scheme, "image"),
		"x-amz-meta-id":        "",
		"x-amz-meta-album_id":  r.AlbumID,
	}
	for key, value := range meta {
		if err := form.WriteField(key, value); err != nil {
			return err
		}
	}

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	return form.Close()
}

type uploadStatusResponse struct {
	Results []UploadStatusItem `json:"results"`
}

// QueryUploadStatus lists the processing state of recent uploads
func (c *Client) QueryUploadStatus(ctx context.Context) ([]UploadStatusItem, error) {
	query := url.Values{}
	query.Set("hours", "1")

	var resp uploadStatusResponse
	if err := c.do(ctx, http.MethodGet, "/upload/status", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
