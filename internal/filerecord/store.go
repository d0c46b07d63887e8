// Package filerecord keeps the local index of remote files: their metadata,
// the content referencing them and the renditions derived from them.
package filerecord

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/jacobsenj/canto-fal/internal/models"
	"github.com/jacobsenj/canto-fal/pkg/db"

	"gorm.io/gorm"
)

// Store persists file records
type Store interface {
	FindAll(ctx context.Context) ([]models.FileRecord, error)
	FindByIdentifier(ctx context.Context, storageID int, identifier string) (*models.FileRecord, error)
	Upsert(ctx context.Context, record *models.FileRecord) error
	CountReferences(ctx context.Context, fileID uint) (int64, error)
	UpdateModificationDate(ctx context.Context, fileID uint, timestamp int64) error
	SaveMetadata(ctx context.Context, fileID uint, data map[string]any) error
	ProcessedFiles(ctx context.Context, fileID uint) ([]models.ProcessedFile, error)
	SaveProcessed(ctx context.Context, processed *models.ProcessedFile) error
	DeleteProcessed(ctx context.Context, fileID uint) error
}

// GormStore is the database backed Store
type GormStore struct {
	records    db.Repository[models.FileRecord]
	references db.Repository[models.FileReference]
	processed  db.Repository[models.ProcessedFile]
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{
		records:    db.NewRepositoryWithDB[models.FileRecord](conn),
		references: db.NewRepositoryWithDB[models.FileReference](conn),
		processed:  db.NewRepositoryWithDB[models.ProcessedFile](conn),
	}
}

var _ Store = (*GormStore)(nil)

// FindAll returns every record ordered by id
func (s *GormStore) FindAll(ctx context.Context) ([]models.FileRecord, error) {
	return s.records.All(ctx, "id")
}

func (s *GormStore) FindByIdentifier(ctx context.Context, storageID int, identifier string) (*models.FileRecord, error) {
	record, err := s.records.FindOneWhere(ctx, "storage_id = ? AND identifier = ?", storageID, identifier)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, identifier)
	}
	return record, err
}

// Upsert creates the record or refreshes name, type and size of the existing one
func (s *GormStore) Upsert(ctx context.Context, record *models.FileRecord) error {
	existing, err := s.FindByIdentifier(ctx, record.StorageID, record.Identifier)
	if errors.Is(err, ErrRecordNotFound) {
		return s.records.Create(ctx, record)
	}
	if err != nil {
		return err
	}

	existing.Name = record.Name
	existing.MimeType = record.MimeType
	existing.Size = record.Size
	if err := s.records.Update(ctx, existing); err != nil {
		return err
	}
	*record = *existing
	return nil
}

func (s *GormStore) CountReferences(ctx context.Context, fileID uint) (int64, error) {
	return s.references.Count(ctx, "file_id = ?", fileID)
}

func (s *GormStore) UpdateModificationDate(ctx context.Context, fileID uint, timestamp int64) error {
	return s.records.WithLock(ctx, fileID, func(record *models.FileRecord, tx *gorm.DB) error {
		record.ModificationDate = timestamp
		return tx.Save(record).Error
	})
}

// SaveMetadata merges data into the stored metadata
func (s *GormStore) SaveMetadata(ctx context.Context, fileID uint, data map[string]any) error {
	return s.records.WithLock(ctx, fileID, func(record *models.FileRecord, tx *gorm.DB) error {
		if record.Metadata == nil {
			record.Metadata = map[string]any{}
		}
		maps.Copy(record.Metadata, data)
		return tx.Save(record).Error
	})
}

func (s *GormStore) ProcessedFiles(ctx context.Context, fileID uint) ([]models.ProcessedFile, error) {
	return s.processed.FindWhere(ctx, "original_file_id = ?", fileID)
}

// SaveProcessed stores a rendition, replacing the one with the same checksum
func (s *GormStore) SaveProcessed(ctx context.Context, processed *models.ProcessedFile) error {
	return s.processed.Replace(ctx, processed,
		"original_file_id = ? AND checksum = ?", processed.OriginalFileID, processed.Checksum)
}

func (s *GormStore) DeleteProcessed(ctx context.Context, fileID uint) error {
	return s.processed.DeleteWhere(ctx, "original_file_id = ?", fileID)
}
