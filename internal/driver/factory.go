package driver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jacobsenj/canto-fal/internal/cache"
	"github.com/jacobsenj/canto-fal/internal/dam"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/mdc"
	"github.com/jacobsenj/canto-fal/internal/metadata"
	"github.com/jacobsenj/canto-fal/internal/registry"
	"github.com/jacobsenj/canto-fal/internal/token"
	"github.com/jacobsenj/canto-fal/internal/transient"
	"github.com/jacobsenj/canto-fal/pkg/canto"
	"github.com/jacobsenj/canto-fal/pkg/config"
)

// ClientFactory builds the RPC client of a storage
type ClientFactory func(cfg *config.DriverConfig) canto.API

// Factory opens drivers for configured storages. It holds everything shared
// between drivers, a driver itself lives as long as one request or job.
type Factory struct {
	Configs  []*config.DriverConfig
	Registry registry.Registry
	// Folders and Files are the cache backends, Files falls back to Folders when nil
	Folders  cache.Backend
	Files    cache.Backend
	CacheTTL time.Duration
	// NewClient defaults to the HTTP client
	NewClient     ClientFactory
	HTTPClient    *http.Client
	Hooks         []mdc.URLHook
	MetadataHooks []metadata.UploadHook
	TempDir       string
	Sleep         Sleeper
	Log           *logger.Logger
}

// Config returns a validated copy of the configuration of a storage.
// Configs are shared between concurrent requests and are never written.
func (f *Factory) Config(storageID int) (*config.DriverConfig, error) {
	for _, shared := range f.Configs {
		if shared.StorageID != storageID {
			continue
		}
		cfg := *shared
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownStorage, storageID)
}

func (f *Factory) client(cfg *config.DriverConfig) canto.API {
	if f.NewClient != nil {
		return f.NewClient(cfg)
	}
	return canto.New(canto.Options{
		BaseURL:    cfg.BaseURL(),
		OAuthURL:   cfg.OAuthURL(),
		AppID:      cfg.AppID,
		AppSecret:  cfg.AppSecret,
		HTTPClient: f.HTTPClient,
	})
}

// Open builds the driver of a storage and makes sure it holds a valid access token.
// Invalid configuration and rejected credentials fail here, never later.
func (f *Factory) Open(ctx context.Context, storageID int) (*Driver, error) {
	cfg, err := f.Config(storageID)
	if err != nil {
		return nil, err
	}

	api := f.client(cfg)
	tokens := token.NewManager(f.Registry, api, f.Log, token.WithLifetime(cfg.SessionTokenLifetime))
	files := f.Files
	if files == nil {
		files = f.Folders
	}
	ttl := f.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	tmp := transient.NewRegistry()

	repo := dam.NewRepository(dam.Options{
		API:       api,
		Tokens:    tokens,
		Cache:     cache.New(f.Folders, files, cfg.StorageID, ttl, f.Log),
		Config:    cfg,
		Transient: tmp,
		TempDir:   f.TempDir,
		Log:       f.Log,
	})
	if err := repo.Initialize(ctx); err != nil {
		f.Log.ForStorage(storageID).WithError(err).Error("Storage initialization failed")
		return nil, err
	}

	return New(Options{
		Repository:    repo,
		Transient:     tmp,
		Hooks:         f.Hooks,
		MetadataHooks: f.MetadataHooks,
		TempDir:       f.TempDir,
		Sleep:         f.Sleep,
		Log:           f.Log,
	}), nil
}

// StorageIDs lists the configured storages
func (f *Factory) StorageIDs() []int {
	ids := make([]int, 0, len(f.Configs))
	for _, cfg := range f.Configs {
		ids = append(ids, cfg.StorageID)
	}
	return ids
}
