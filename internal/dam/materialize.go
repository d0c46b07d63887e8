package dam

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/utils"
	"github.com/jacobsenj/canto-fal/pkg/canto"

	"github.com/sirupsen/logrus"
)

const tempFilePrefix = "canto_clone_"

// source picks the download URL and the file extension of the local copy
func source(asset *canto.Asset, preview bool) (string, string) {
	if preview {
		return asset.URL.DirectURLPreview, "jpg"
	}
	return asset.URL.DirectURLOriginal, strings.TrimPrefix(filepath.Ext(asset.Name), ".")
}

// MaterializeForLocalProcessing copies a remote file to a temporary local path.
// Files missing remotely resolve to the configured fallback file. With media
// delivery active no copy is made and the result is empty. Every returned path
// is registered as transient and removed when the registry is closed.
func (r *Repository) MaterializeForLocalProcessing(ctx context.Context, fileIdentifier string, preview bool) (string, error) {
	id, err := identifier.Decode(fileIdentifier)
	if err != nil {
		return "", err
	}

	asset := r.GetFileDetails(ctx, id.Scheme, id.ID)
	if asset == nil {
		r.transient.Add(r.cfg.FallbackFilePath)
		return r.cfg.FallbackFilePath, nil
	}

	sourceURL, extension := source(asset, preview)
	if sourceURL == "" {
		return "", fmt.Errorf("%w: no source url for %s", ErrMaterializationFailed, fileIdentifier)
	}

	if r.cfg.MdcActive {
		return "", nil
	}

	dir := r.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := utils.TempFileName(dir, tempFilePrefix, extension)

	if err := r.download(ctx, path, sourceURL); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMaterializationFailed, fileIdentifier, err)
	}

	if mtime := identifier.CantoTimestamp(asset.Default.DateModified); mtime > 0 {
		if err := os.Chtimes(path, time.Now(), time.Unix(mtime, 0)); err != nil {
			r.log.WithFields(r.fields(logrus.Fields{"path": path})).WithError(err).Warn("Could not set modification time")
		}
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: copying %s to %s: %v", ErrMaterializationFailed, fileIdentifier, path, err)
	}

	return path, nil
}

func (r *Repository) download(ctx context.Context, path, sourceURL string) error {
	body, err := r.api.GetAuthorizedURLContent(ctx, sourceURL)
	if err != nil {
		return err
	}
	defer body.Close()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	// registered before writing so a failed copy is still cleaned up
	r.transient.Add(path)

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
