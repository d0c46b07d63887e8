package models

import (
	"time"

	"gorm.io/gorm"
)

// RegistryEntry is a namespaced key/value pair, e.g. the access token of a storage
type RegistryEntry struct {
	ID         uint   `gorm:"primaryKey;column:id"`
	Namespace  string `gorm:"column:namespace;size:128;not null;uniqueIndex:idx_registry_namespace_key"`
	Key        string `gorm:"column:entry_key;size:128;not null;uniqueIndex:idx_registry_namespace_key"`
	Value      string `gorm:"column:entry_value;type:text"`
	ModifiedAt int64  `gorm:"column:modified_at;autoCreateTime:false;not null"`
}

// TableName specifies the table name for RegistryEntry
func (RegistryEntry) TableName() string {
	return "registry"
}

// BeforeSave hook for RegistryEntry
func (e *RegistryEntry) BeforeSave(tx *gorm.DB) error {
	e.ModifiedAt = time.Now().Unix()
	return nil
}
