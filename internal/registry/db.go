package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacobsenj/canto-fal/internal/models"
	"github.com/jacobsenj/canto-fal/pkg/db"

	"gorm.io/gorm"
)

// DBRegistry stores entries in the registry table
type DBRegistry struct {
	repo db.Repository[models.RegistryEntry]
}

// NewDBRegistry creates a registry on top of the given connection
func NewDBRegistry(conn *gorm.DB) *DBRegistry {
	return &DBRegistry{repo: db.NewRepositoryWithDB[models.RegistryEntry](conn)}
}

// Get returns the stored value of namespace/key
func (r *DBRegistry) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	entry, err := r.repo.FindOneWhere(ctx, "namespace = ? AND entry_key = ?", namespace, key)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return entry.Value, true, nil
}

// Set upserts namespace/key
func (r *DBRegistry) Set(ctx context.Context, namespace, key, value string) error {
	entry := &models.RegistryEntry{Namespace: namespace, Key: key, Value: value}

	err := r.repo.Upsert(ctx, entry,
		[]string{"namespace", "entry_key"}, []string{"entry_value", "modified_at"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return nil
}
