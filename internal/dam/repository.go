// Package dam is the repository in front of one Canto storage. It resolves
// folders, albums and assets through the resource cache and keeps the access
// token of the storage valid.
package dam

import (
	"context"
	"fmt"

	"github.com/jacobsenj/canto-fal/internal/cache"
	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/metrics"
	"github.com/jacobsenj/canto-fal/internal/token"
	"github.com/jacobsenj/canto-fal/internal/transient"
	"github.com/jacobsenj/canto-fal/pkg/canto"
	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// warmConcurrency bounds parallel cache writes while seeding from a tree
const warmConcurrency = 8

// Options holds the collaborators of a Repository
type Options struct {
	API       canto.API
	Tokens    *token.Manager
	Cache     *cache.ResourceCache
	Config    *config.DriverConfig
	Transient *transient.Registry
	// TempDir receives local copies of remote files, os.TempDir when empty
	TempDir string
	Log     *logger.Logger
}

// Repository serves one storage
type Repository struct {
	api       canto.API
	tokens    *token.Manager
	cache     *cache.ResourceCache
	cfg       *config.DriverConfig
	transient *transient.Registry
	tempDir   string
	log       *logger.Logger
}

// NewRepository creates a repository, call Initialize before use
func NewRepository(opts Options) *Repository {
	return &Repository{
		api:       opts.API,
		tokens:    opts.Tokens,
		cache:     opts.Cache,
		cfg:       opts.Config,
		transient: opts.Transient,
		tempDir:   opts.TempDir,
		log:       opts.Log,
	}
}

// Initialize makes sure the client carries a valid access token
func (r *Repository) Initialize(ctx context.Context) error {
	tok, err := r.tokens.EnsureValidToken(ctx, r.cfg.StorageID, token.Credentials{
		UserID: r.cfg.UserID,
		Scope:  r.cfg.Scope,
	})
	if err != nil {
		return err
	}
	r.api.SetAccessToken(tok)
	return nil
}

// Client exposes the underlying API for mutations
func (r *Repository) Client() canto.API {
	return r.api
}

// Config returns the storage configuration
func (r *Repository) Config() *config.DriverConfig {
	return r.cfg
}

// CacheTag returns the invalidation tag of the storage
func (r *Repository) CacheTag() string {
	return r.cache.Tag()
}

// Invalidate flushes all cached entries of the storage
func (r *Repository) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx)
}

func (r *Repository) fields(extra logrus.Fields) logrus.Fields {
	f := logrus.Fields{"storage": r.cfg.StorageID}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// GetFolderDetails returns a folder or album. Any remote failure is reported as ErrFolderNotFound.
func (r *Repository) GetFolderDetails(ctx context.Context, scheme identifier.Scheme, id string) (*canto.Folder, error) {
	combined := identifier.Encode(scheme, id)

	folder, err := cache.Fetch(ctx, r.cache, cache.KindFolder, cache.DetailKey(combined), func(ctx context.Context) (*canto.Folder, error) {
		f, err := r.api.GetFolderDetails(ctx, string(scheme), id)
		metrics.RecordRPC("folder_details", err)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrFolderNotFound, id, err)
	}
	return folder, nil
}

// SeedFolder caches folder details under combined unless already present
func (r *Repository) SeedFolder(ctx context.Context, combined string, folder *canto.Folder) {
	r.cache.Put(ctx, cache.KindFolder, cache.DetailKey(combined), folder)
}

// GetFileDetails returns an asset, nil when it cannot be fetched
func (r *Repository) GetFileDetails(ctx context.Context, scheme identifier.Scheme, id string) *canto.Asset {
	combined := identifier.Encode(scheme, id)

	asset, err := cache.Fetch(ctx, r.cache, cache.KindFile, cache.DetailKey(combined), func(ctx context.Context) (*canto.Asset, error) {
		a, err := r.api.GetContentDetails(ctx, string(scheme), id)
		metrics.RecordRPC("content_details", err)
		return a, err
	})
	if err != nil {
		r.log.WithFields(r.fields(logrus.Fields{"identifier": combined})).WithError(err).Debug("File details unavailable")
		return nil
	}
	return asset
}

// SeedFile caches asset details under combined unless already present
func (r *Repository) SeedFile(ctx context.Context, combined string, asset *canto.Asset) {
	r.cache.Put(ctx, cache.KindFile, cache.DetailKey(combined), asset)
}

// ForgetFile drops the cached details of one file
func (r *Repository) ForgetFile(ctx context.Context, combined string) error {
	return r.cache.Remove(ctx, cache.KindFile, cache.DetailKey(combined))
}

// FolderTree returns the folder tree below the configured root.
// All folders of the tree are cached individually on the way.
func (r *Repository) FolderTree(ctx context.Context, sortBy, sortDirection string) Tree {
	key := cache.TreeKey(r.cfg.StorageID, sortBy, sortDirection)

	tree, err := cache.Fetch(ctx, r.cache, cache.KindFolder, key, func(ctx context.Context) (Tree, error) {
		req := canto.TreeRequest{SortBy: sortBy, SortDirection: sortDirection}
		if identifier.Scheme(r.cfg.RootFolderScheme) == identifier.SchemeFolder && r.cfg.RootFolder != identifier.Root {
			req.FolderID = r.cfg.RootFolder
		}

		folders, err := r.api.GetTree(ctx, req)
		metrics.RecordRPC("tree", err)
		if err != nil {
			return nil, err
		}

		return r.buildAndWarm(ctx, folders), nil
	})
	if err != nil {
		r.log.WithFields(r.fields(nil)).WithError(err).Warn("Folder tree unavailable")
		return Tree{}
	}
	return tree
}

func (r *Repository) buildAndWarm(ctx context.Context, folders []canto.Folder) Tree {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	tree := buildTree(folders, func(id string, f canto.Folder) {
		g.Go(func() error {
			r.SeedFolder(gctx, id, &f)
			return nil
		})
	})
	_ = g.Wait()

	return tree
}

// FilesInFolder lists a page of an album. The page size is capped at canto.MaxListLimit.
func (r *Repository) FilesInFolder(ctx context.Context, albumID string, start, limit int, sortBy, sortDirection string) []canto.Asset {
	if limit <= 0 || limit > canto.MaxListLimit {
		limit = canto.MaxListLimit
	}

	resp, err := r.api.ListAlbumContent(ctx, canto.ListAlbumContentRequest{
		AlbumID:       albumID,
		Start:         start,
		Limit:         limit,
		SortBy:        sortBy,
		SortDirection: sortDirection,
	})
	metrics.RecordRPC("album_content", err)
	if err != nil {
		r.log.WithFields(r.fields(logrus.Fields{"album": albumID})).WithError(err).Warn("Listing album failed")
		return nil
	}
	return resp.Results
}

// AllFilesInFolder pages through an album from start until count assets are
// collected or the album is exhausted. A count of zero or less means all of them.
func (r *Repository) AllFilesInFolder(ctx context.Context, albumID string, start, count int, sortBy, sortDirection string) []canto.Asset {
	var assets []canto.Asset
	offset := start
	for {
		limit := canto.MaxListLimit
		if count > 0 {
			remaining := count - len(assets)
			if remaining <= 0 {
				break
			}
			limit = min(remaining, canto.MaxListLimit)
		}

		resp, err := r.api.ListAlbumContent(ctx, canto.ListAlbumContentRequest{
			AlbumID:       albumID,
			Start:         offset,
			Limit:         limit,
			SortBy:        sortBy,
			SortDirection: sortDirection,
		})
		metrics.RecordRPC("album_content", err)
		if err != nil {
			r.log.WithFields(r.fields(logrus.Fields{"album": albumID, "start": offset})).WithError(err).Warn("Listing album failed")
			break
		}

		assets = append(assets, resp.Results...)
		offset += len(resp.Results)
		if len(resp.Results) < limit || offset >= resp.Found {
			break
		}
	}
	if count > 0 && len(assets) > count {
		assets = assets[:count]
	}
	return assets
}

// CountFilesInFolder reads the total of an album from a single item page
func (r *Repository) CountFilesInFolder(ctx context.Context, albumID string) int {
	resp, err := r.api.ListAlbumContent(ctx, canto.ListAlbumContentRequest{AlbumID: albumID, Limit: 1})
	metrics.RecordRPC("album_count", err)
	if err != nil {
		return 0
	}
	return max(0, resp.Found)
}

// Search queries assets across the library
func (r *Repository) Search(ctx context.Context, req canto.SearchRequest) (*canto.ListResponse, error) {
	resp, err := r.api.Search(ctx, req)
	metrics.RecordRPC("search", err)
	return resp, err
}
