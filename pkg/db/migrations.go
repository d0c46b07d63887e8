package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// Migrate brings the schema up to date, by gorm auto-migration of models or
// by the SQL files depending on the configured mode
func Migrate(cfg *config.DatabaseConfig, models ...any) error {
	gdb := current()
	if gdb == nil {
		return ErrNotInitialized
	}

	if cfg.AutoMigrate() {
		start := time.Now()
		if err := gdb.AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		logrus.WithField("duration", time.Since(start)).Info("Auto-migration completed")
		return nil
	}

	m, err := NewMigrator(cfg.MigrationsPath)
	if err != nil {
		return err
	}
	return m.Up()
}

// Migrator applies the SQL migrations on the shared connection. It is not
// closed: closing the migrate instance would close the shared connection too.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator reads migrations from the directory at path
func NewMigrator(path string) (*Migrator, error) {
	gdb := current()
	if gdb == nil {
		return nil, ErrNotInitialized
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	m.logVersion()
	return nil
}

// Down rolls back steps migrations
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("invalid number of steps: %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	m.logVersion()
	return nil
}

// Force sets the version without running migrations, clearing a dirty state
func (m *Migrator) Force(version int) error {
	logrus.WithField("version", version).Warn("Forcing migration version")
	return m.m.Force(version)
}

// Version returns the applied version, zero when nothing was applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) logVersion() {
	version, dirty, err := m.Version()
	if err != nil {
		logrus.WithError(err).Warn("Reading migration version failed")
		return
	}
	logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Migrations applied")
}
