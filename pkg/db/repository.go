package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// Repository is the table access used by the stores of this service
type Repository[T any] interface {
	All(ctx context.Context, order string) ([]T, error)
	FindWhere(ctx context.Context, condition string, args ...any) ([]T, error)
	FindOneWhere(ctx context.Context, condition string, args ...any) (*T, error)
	Count(ctx context.Context, condition string, args ...any) (int64, error)

	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	// Upsert inserts entity or overwrites updateColumns of the row matching conflictColumns
	Upsert(ctx context.Context, entity *T, conflictColumns, updateColumns []string) error
	// Replace deletes the rows matching condition and inserts entity in one transaction
	Replace(ctx context.Context, entity *T, condition string, args ...any) error
	DeleteWhere(ctx context.Context, condition string, args ...any) error

	// WithLock runs fn with the row of id locked for update
	WithLock(ctx context.Context, id any, fn func(*T, *gorm.DB) error) error
}

// BaseRepository implements Repository for one model
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewRepositoryWithDB creates a repository on the given connection
func NewRepositoryWithDB[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

func (r *BaseRepository[T]) All(ctx context.Context, order string) ([]T, error) {
	var entities []T
	if err := r.db.WithContext(ctx).Order(order).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindWhere finds entities matching the given condition
func (r *BaseRepository[T]) FindWhere(ctx context.Context, condition string, args ...any) ([]T, error) {
	var entities []T
	if err := r.db.WithContext(ctx).Where(condition, args...).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindOneWhere finds the first entity matching the condition or ErrNotFound
func (r *BaseRepository[T]) FindOneWhere(ctx context.Context, condition string, args ...any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(condition, args...).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *BaseRepository[T]) Count(ctx context.Context, condition string, args ...any) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(condition, args...).Count(&count).Error
	return count, err
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// Update saves an entity holding a row lock
func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	return inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Save(entity).Error
	})
}

func (r *BaseRepository[T]) Upsert(ctx context.Context, entity *T, conflictColumns, updateColumns []string) error {
	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, name := range conflictColumns {
		columns = append(columns, clause.Column{Name: name})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   columns,
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(entity).Error
}

func (r *BaseRepository[T]) Replace(ctx context.Context, entity *T, condition string, args ...any) error {
	return inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where(condition, args...).Delete(new(T)).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.Returning{}).Create(entity).Error
	})
}

func (r *BaseRepository[T]) DeleteWhere(ctx context.Context, condition string, args ...any) error {
	return r.db.WithContext(ctx).Where(condition, args...).Delete(new(T)).Error
}

func (r *BaseRepository[T]) WithLock(ctx context.Context, id any, fn func(*T, *gorm.DB) error) error {
	return inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var entity T
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entity, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return fn(&entity, tx)
	})
}

// inTransaction rolls back when fn fails or panics
func inTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
