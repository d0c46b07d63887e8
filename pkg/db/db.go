// Package db owns the PostgreSQL connection of the file index and the
// token registry.
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotInitialized is returned when the connection is used before Initialize
var ErrNotInitialized = errors.New("database not initialized")

var (
	conn *gorm.DB
	mu   sync.Mutex
)

// Initialize opens the shared connection. Once a connection succeeded later
// calls are no-ops; a failed attempt leaves nothing behind and may be retried.
func Initialize(cfg *config.DatabaseConfig) error {
	mu.Lock()
	defer mu.Unlock()

	if conn != nil {
		return nil
	}
	gdb, err := open(cfg)
	if err != nil {
		return err
	}
	conn = gdb
	return nil
}

func open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 newLogger(cfg.SlowQuery),
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.PrepareCached,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.PoolMinSize)
	sqlDB.SetMaxOpenConns(cfg.PoolMaxSize)
	sqlDB.SetConnMaxIdleTime(cfg.MaxIdleTime)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"database": cfg.Name,
		"host":     cfg.Host,
		"poolMax":  cfg.PoolMaxSize,
	}).Info("Connected to database")
	return gdb, nil
}

// newLogger routes gorm output through logrus, verbose only at debug level
func newLogger(slow time.Duration) gormlogger.Interface {
	level := gormlogger.Warn
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func current() *gorm.DB {
	mu.Lock()
	defer mu.Unlock()
	return conn
}

// GetDB returns the shared connection and panics before Initialize
func GetDB() *gorm.DB {
	mu.Lock()
	defer mu.Unlock()

	if conn == nil {
		panic("Database not initialized. Call Initialize() first")
	}
	return conn
}

// Close closes the shared connection if it was opened
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if conn == nil {
		return nil
	}
	defer func() { conn = nil }()
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	logrus.Info("Database connection closed")
	return nil
}

// Health pings the database
func Health(ctx context.Context) error {
	gdb := current()
	if gdb == nil {
		return ErrNotInitialized
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
