package driver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/mdc"

	"github.com/sirupsen/logrus"
)

// PublicURL returns where the file can be fetched from, empty when the asset is unknown.
// With media delivery active documents are served as assets and images through an
// operator for their natural size.
func (d *Driver) PublicURL(ctx context.Context, id string) string {
	c, err := identifier.Decode(id)
	if err != nil {
		return ""
	}
	asset := d.repo.GetFileDetails(ctx, c.Scheme, c.ID)
	if asset == nil {
		return ""
	}

	var raw string
	switch {
	case d.cfg.MdcActive && c.Scheme == identifier.SchemeDocument:
		raw = d.repo.AssetURL(c, asset.Name)
	case d.cfg.MdcActive:
		raw = d.repo.ImageURL(c) + d.builder.Suffix(mdc.Transform{
			Width:  int(asset.Width.Int()),
			Height: int(asset.Height.Int()),
		})
	default:
		raw = asset.URL.DirectURLOriginal
	}
	if raw == "" {
		return ""
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (d *Driver) openContent(ctx context.Context, fileIdentifier string) (io.ReadCloser, error) {
	publicURL := d.PublicURL(ctx, fileIdentifier)
	if publicURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrFileUnavailable, fileIdentifier)
	}
	return d.repo.Client().GetAuthorizedURLContent(ctx, publicURL)
}

// FileContents downloads the file behind its public URL
func (d *Driver) FileContents(ctx context.Context, fileIdentifier string) ([]byte, error) {
	body, err := d.openContent(ctx, fileIdentifier)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// StreamFile returns the response headers of a download together with the content
func (d *Driver) StreamFile(ctx context.Context, fileIdentifier string, opts StreamOptions) (http.Header, io.ReadCloser, error) {
	info := d.FileInfo(ctx, fileIdentifier)

	name := info.Name
	if opts.FileName != "" {
		name = opts.FileName
	}
	mimeType := info.MimeType
	if opts.MimeType != "" {
		mimeType = opts.MimeType
	}
	disposition := "inline"
	if opts.AsDownload {
		disposition = "attachment"
	}

	body, err := d.openContent(ctx, fileIdentifier)
	if err != nil {
		return nil, nil, err
	}

	header := http.Header{}
	header.Set("Content-Disposition", disposition+`; filename="`+name+`"`)
	header.Set("Content-Type", mimeType)
	header.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	header.Set("Last-Modified", time.Unix(info.Mtime, 0).UTC().Format(http.TimeFormat))

	return header, body, nil
}

// FileForLocalProcessing materializes a preview of the file locally.
// The copy is removed when the driver is closed.
func (d *Driver) FileForLocalProcessing(ctx context.Context, fileIdentifier string) (string, error) {
	return d.LocalCopy(ctx, fileIdentifier, true)
}

// LocalCopy materializes the preview or the original of the file locally
func (d *Driver) LocalCopy(ctx context.Context, fileIdentifier string, preview bool) (string, error) {
	path, err := d.repo.MaterializeForLocalProcessing(ctx, fileIdentifier, preview)
	if err != nil {
		d.log.WithFields(d.fields(logrus.Fields{"identifier": fileIdentifier})).WithError(err).Error("Local copy failed")
	}
	return path, err
}
