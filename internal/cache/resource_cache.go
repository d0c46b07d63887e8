// Package cache holds the cache-aside layer in front of the Canto API.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Kind selects the folder or the file cache
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

const (
	tagFormat  = "canto_storage_%d"
	treePrefix = "fulltree_"
	DefaultTTL = time.Hour
)

// ResourceCache caches folder and file details of one storage.
// Every entry carries the storage tag so Invalidate drops all of them at once.
type ResourceCache struct {
	folders Backend
	files   Backend
	tag     string
	ttl     time.Duration
	group   singleflight.Group
	log     *logger.Logger
}

// New creates the cache of storageID on top of the two backends
func New(folders, files Backend, storageID int, ttl time.Duration, log *logger.Logger) *ResourceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResourceCache{
		folders: folders,
		files:   files,
		tag:     Tag(storageID),
		ttl:     ttl,
		log:     log,
	}
}

// Tag returns the invalidation tag of a storage
func Tag(storageID int) string {
	return fmt.Sprintf(tagFormat, storageID)
}

// DetailKey is the key of a folder or file detail entry: sha1 hex of the combined identifier
func DetailKey(combinedIdentifier string) string {
	sum := sha1.Sum([]byte(combinedIdentifier))
	return hex.EncodeToString(sum[:])
}

// TreeKey is the key of a cached folder tree
func TreeKey(storageID int, sortBy, sortDirection string) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%d%s%s", storageID, sortBy, sortDirection)))
	return treePrefix + hex.EncodeToString(sum[:])
}

// Tag returns the tag attached to every entry of this cache
func (c *ResourceCache) Tag() string {
	return c.tag
}

func (c *ResourceCache) backend(kind Kind) Backend {
	if kind == KindFile {
		return c.files
	}
	return c.folders
}

// Lookup decodes the entry under key into out and reports whether it was present
func (c *ResourceCache) Lookup(ctx context.Context, kind Kind, key string, out any) bool {
	raw, found, err := c.backend(kind).Get(ctx, key)
	if err != nil {
		c.log.WithFields(logrus.Fields{"kind": kind, "key": key}).WithError(err).Warn("Cache read failed")
		found = false
	}
	if found {
		if err := json.Unmarshal(raw, out); err != nil {
			c.log.WithFields(logrus.Fields{"kind": kind, "key": key}).WithError(err).Warn("Dropping undecodable cache entry")
			_ = c.backend(kind).Delete(ctx, key)
			found = false
		}
	}
	metrics.RecordCacheLookup(string(kind), found)
	return found
}

// Put stores value under key unless an entry is already present
func (c *ResourceCache) Put(ctx context.Context, kind Kind, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.WithFields(logrus.Fields{"kind": kind, "key": key}).WithError(err).Warn("Cache value not encodable")
		return
	}
	if _, err := c.backend(kind).SetIfAbsent(ctx, key, raw, c.ttl, c.tag); err != nil {
		c.log.WithFields(logrus.Fields{"kind": kind, "key": key}).WithError(err).Warn("Cache write failed")
	}
}

// Remove drops a single entry
func (c *ResourceCache) Remove(ctx context.Context, kind Kind, key string) error {
	return c.backend(kind).Delete(ctx, key)
}

// Invalidate flushes every entry of this storage in both caches
func (c *ResourceCache) Invalidate(ctx context.Context) error {
	metrics.RecordCacheFlush()

	if err := c.folders.FlushTag(ctx, c.tag); err != nil {
		return fmt.Errorf("flush folder cache: %w", err)
	}
	if c.files != c.folders {
		if err := c.files.FlushTag(ctx, c.tag); err != nil {
			return fmt.Errorf("flush file cache: %w", err)
		}
	}
	return nil
}

// Fetch returns the cached value under key or calls fetch and caches its result.
// Concurrent misses for the same key share one fetch. Failed fetches are not cached.
func Fetch[T any](ctx context.Context, c *ResourceCache, kind Kind, key string, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Lookup(ctx, kind, key, &cached) {
		return cached, nil
	}

	v, err, _ := c.group.Do(string(kind)+":"+key, func() (interface{}, error) {
		value, err := fetch(ctx)
		if err != nil {
			return value, err
		}
		c.Put(ctx, kind, key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
