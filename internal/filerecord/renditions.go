package filerecord

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/mdc"
	"github.com/jacobsenj/canto-fal/internal/models"
)

// ObjectStore keeps rendition files, implemented by the s3 client
type ObjectStore interface {
	RenditionDirectory(storageID int, fileID uint) string
	RenditionKey(storageID int, fileID uint, name string) string
	PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	DeleteDirectory(ctx context.Context, prefix string) error
}

// Source produces renditions of the files of one storage, implemented by the driver
type Source interface {
	StorageID() int
	MdcActive() bool
	Process(ctx context.Context, task mdc.Task) (*mdc.Result, error)
	LocalCopy(ctx context.Context, fileIdentifier string, preview bool) (string, error)
}

// Renditions derives and purges processed files
type Renditions struct {
	store   Store
	objects ObjectStore
	log     *logger.Logger
}

// NewRenditions creates the rendition service. objects may be nil when no bucket is configured,
// renditions are then only available through media delivery.
func NewRenditions(store Store, objects ObjectStore, log *logger.Logger) *Renditions {
	return &Renditions{store: store, objects: objects, log: log}
}

// Checksum identifies a task, equal tasks produce equal renditions
func Checksum(task mdc.Task) string {
	data, _ := json.Marshal(struct {
		Name          string
		Configuration mdc.Configuration
		Width, Height int
	}{task.Name, task.Configuration, task.ImageWidth, task.ImageHeight})

	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Process produces the rendition task describes for record and stores it
func (r *Renditions) Process(ctx context.Context, src Source, record *models.FileRecord, task mdc.Task) (*models.ProcessedFile, error) {
	task.Identifier = record.Identifier
	processed := &models.ProcessedFile{
		OriginalFileID: record.ID,
		Identifier:     identifier.ToProcessedIdentifier(record.Identifier),
		TaskType:       task.Name,
		Checksum:       Checksum(task),
	}

	if src.MdcActive() {
		result, err := src.Process(ctx, task)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRenditionFailed, err)
		}
		processed.ProcessingURL = result.URL
		processed.Identifier = result.ProcessedIdentifier
		processed.Width = result.Width
		processed.Height = result.Height
		processed.Name = record.Name
	} else if err := r.upload(ctx, src, record, task, processed); err != nil {
		return nil, err
	}

	if err := r.store.SaveProcessed(ctx, processed); err != nil {
		return nil, err
	}
	return processed, nil
}

func (r *Renditions) upload(ctx context.Context, src Source, record *models.FileRecord, task mdc.Task, processed *models.ProcessedFile) error {
	if r.objects == nil {
		return fmt.Errorf("%w: no rendition bucket configured", ErrRenditionFailed)
	}

	path, err := src.LocalCopy(ctx, record.Identifier, task.Name == mdc.TaskPreview)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenditionFailed, err)
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenditionFailed, err)
	}
	defer file.Close()

	ext := filepath.Ext(path)
	processed.Name = processed.Checksum + ext
	processed.StorageKey = r.objects.RenditionKey(src.StorageID(), record.ID, processed.Name)
	processed.Width = task.ImageWidth
	processed.Height = task.ImageHeight

	if err := r.objects.PutObject(ctx, processed.StorageKey, file, mime.TypeByExtension(ext)); err != nil {
		return fmt.Errorf("%w: %v", ErrRenditionFailed, err)
	}
	return nil
}

// Purge removes every rendition of record, both the rows and the stored objects
func (r *Renditions) Purge(ctx context.Context, storageID int, record *models.FileRecord) error {
	var errs []error
	if err := r.store.DeleteProcessed(ctx, record.ID); err != nil {
		errs = append(errs, err)
	}
	if r.objects != nil {
		if err := r.objects.DeleteDirectory(ctx, r.objects.RenditionDirectory(storageID, record.ID)); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		r.log.ForResource(storageID, record.Identifier).WithError(err).Warn("Purging renditions failed")
	}
	return err
}
