package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsenj/canto-fal/internal/cache"
	"github.com/jacobsenj/canto-fal/internal/driver"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/models"
	"github.com/jacobsenj/canto-fal/internal/registry"
	"github.com/jacobsenj/canto-fal/pkg/config"
	"github.com/jacobsenj/canto-fal/pkg/db"
	"github.com/jacobsenj/canto-fal/pkg/redis"
)

// app holds the services shared by the subcommands. Fields stay nil until opened.
type app struct {
	cfg *config.AppConfig
	log *logger.Logger

	// folders and files are the two resource cache backends
	folders cache.Backend
	files   cache.Backend
	memory  []*cache.MemoryBackend

	// migrated is set once openDatabase succeeded, a command may ask for the database twice
	migrated bool
}

// newApp loads configuration and sets up logging
func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.Setup(logger.Options{
		Level:       cfg.LogLevel,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openDatabase connects and, unless disabled, migrates the database
func (a *app) openDatabase() error {
	if a.migrated {
		return nil
	}
	if err := a.connectDatabase(); err != nil {
		return err
	}

	if a.cfg.Database.MigrateOnBoot {
		a.log.Infof("Running database migrations (%s)...", a.cfg.Database.MigrationMode)
		if err := db.Migrate(a.cfg.Database, models.All()...); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	a.migrated = true
	return nil
}

func (a *app) connectDatabase() error {
	if err := a.cfg.Database.Validate(); err != nil {
		return err
	}
	a.log.Info("Initializing database connection...")
	if err := db.Initialize(a.cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// openRedis connects the default Redis client
func (a *app) openRedis(ctx context.Context) (*redis.Client, error) {
	a.log.Info("Initializing Redis connection...")
	redis.InitDefault(a.cfg.Redis)
	client := redis.GetDefault()

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.log.Info("Connected to Redis successfully")
	return client, nil
}

// cacheBackends opens the folder and the file cache. Each gets its own
// keyspace, and in memory its own eviction budget.
func (a *app) cacheBackends(ctx context.Context) (folders, files cache.Backend, err error) {
	if a.folders != nil {
		return a.folders, a.files, nil
	}

	if a.cfg.Cache.Backend == config.CacheBackendMemory {
		for _, target := range []*cache.Backend{&a.folders, &a.files} {
			backend, err := cache.NewMemoryBackend(cache.MemoryOptions{
				Shards:       a.cfg.Cache.MemoryShards,
				MaxEntrySize: a.cfg.Cache.MemoryMaxEntrySize,
				CleanWindow:  a.cfg.Cache.MemoryCleanWindow,
			})
			if err != nil {
				return nil, nil, err
			}
			*target = backend
			a.memory = append(a.memory, backend)
		}
		return a.folders, a.files, nil
	}

	client, err := a.openRedis(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.folders = cache.NewRedisBackend(client, "folder")
	a.files = cache.NewRedisBackend(client, "file")
	return a.folders, a.files, nil
}

// tokenRegistry opens the durable registry access tokens are kept in
func (a *app) tokenRegistry(ctx context.Context) (registry.Registry, error) {
	if a.cfg.RegistryBackend == config.RegistryBackendRedis {
		client, err := a.openRedis(ctx)
		if err != nil {
			return nil, err
		}
		return registry.NewRedisRegistry(client), nil
	}

	if err := a.openDatabase(); err != nil {
		return nil, err
	}
	return registry.NewDBRegistry(db.GetDB()), nil
}

// factory builds the driver factory over the configured storages
func (a *app) factory(ctx context.Context) (*driver.Factory, error) {
	if len(a.cfg.Drivers) == 0 {
		return nil, fmt.Errorf("%w: no storage configured", config.ErrInvalidConfiguration)
	}

	folders, files, err := a.cacheBackends(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := a.tokenRegistry(ctx)
	if err != nil {
		return nil, err
	}

	return &driver.Factory{
		Configs:  a.cfg.Drivers,
		Registry: reg,
		Folders:  folders,
		Files:    files,
		CacheTTL: a.cfg.Cache.Lifetime,
		TempDir:  a.cfg.TempDir,
		Log:      a.log,
	}, nil
}

// close releases every opened connection
func (a *app) close() {
	for _, backend := range a.memory {
		if err := backend.Close(); err != nil {
			a.log.WithError(err).Warn("Error closing cache backend")
		}
	}
	if err := db.Close(); err != nil {
		a.log.WithError(err).Error("Error closing database connection")
	}
	a.log.Info("Closing Redis connections...")
	redis.CloseAll()
}
