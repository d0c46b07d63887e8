package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverCanto is the driver name stored on records backed by a Canto storage
const DriverCanto = "Canto"

// FileRecord is the local index entry of a remote file
type FileRecord struct {
	ID               uint           `gorm:"primaryKey;column:id"`
	StorageID        int            `gorm:"column:storage_id;not null;index:idx_file_records_storage_identifier"`
	Driver           string         `gorm:"column:driver;size:32;not null;default:'Canto'"`
	Identifier       string         `gorm:"column:identifier;size:255;not null;index:idx_file_records_storage_identifier"`
	Name             string         `gorm:"column:name;size:255"`
	MimeType         string         `gorm:"column:mime_type;size:128"`
	Size             int64          `gorm:"column:size"`
	ModificationDate int64          `gorm:"column:modification_date;not null;default:0"`
	Metadata         map[string]any `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt        int64          `gorm:"column:created_at;autoCreateTime:false;not null"`
	ModifiedAt       int64          `gorm:"column:modified_at;autoCreateTime:false;not null"`

	// Relationships
	References []FileReference `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
	Processed  []ProcessedFile `gorm:"foreignKey:OriginalFileID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for FileRecord
func (FileRecord) TableName() string {
	return "file_records"
}

// BeforeCreate hook for FileRecord
func (f *FileRecord) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Unix()
	if f.CreatedAt == 0 {
		f.CreatedAt = now
	}
	if f.ModifiedAt == 0 {
		f.ModifiedAt = now
	}
	return nil
}

// BeforeUpdate hook for FileRecord
func (f *FileRecord) BeforeUpdate(tx *gorm.DB) error {
	f.ModifiedAt = time.Now().Unix()
	return nil
}

// FileReference marks a file as used by some piece of content
type FileReference struct {
	ID           uint   `gorm:"primaryKey;column:id"`
	FileID       uint   `gorm:"column:file_id;not null;index:idx_file_references_file_id"`
	ContentTable string `gorm:"column:content_table;size:64"`
	FieldName    string `gorm:"column:field_name;size:64"`
	RecordID     uint   `gorm:"column:record_id"`
	CreatedAt    int64  `gorm:"column:created_at;autoCreateTime:false;not null"`
}

// TableName specifies the table name for FileReference
func (FileReference) TableName() string {
	return "file_references"
}

// BeforeCreate hook for FileReference
func (r *FileReference) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	return nil
}

// ProcessedFile is a derived rendition of a file, either an MDC url or an object in the rendition bucket
type ProcessedFile struct {
	ID             uint   `gorm:"primaryKey;column:id"`
	OriginalFileID uint   `gorm:"column:original_file_id;not null;index:idx_processed_files_original"`
	Identifier     string `gorm:"column:identifier;size:255"`
	Name           string `gorm:"column:name;size:255"`
	TaskType       string `gorm:"column:task_type;size:64"`
	Checksum       string `gorm:"column:checksum;size:64"`
	ProcessingURL  string `gorm:"column:processing_url;type:text"`
	StorageKey     string `gorm:"column:storage_key;size:1024"`
	Width          int    `gorm:"column:width"`
	Height         int    `gorm:"column:height"`
	CreatedAt      int64  `gorm:"column:created_at;autoCreateTime:false;not null"`
}

// TableName specifies the table name for ProcessedFile
func (ProcessedFile) TableName() string {
	return "processed_files"
}

// BeforeCreate hook for ProcessedFile
func (p *ProcessedFile) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	return nil
}

// All returns every model managed by the application, for auto migration
func All() []interface{} {
	return []interface{}{
		&RegistryEntry{},
		&FileRecord{},
		&FileReference{},
		&ProcessedFile{},
	}
}
