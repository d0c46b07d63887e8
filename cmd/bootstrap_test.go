package main

import (
	"context"
	"testing"
	"time"

	"github.com/jacobsenj/canto-fal/internal/cache"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCachesAreSeparate(t *testing.T) {
	a := &app{
		cfg: &config.AppConfig{Cache: &config.CacheConfig{
			Backend:      config.CacheBackendMemory,
			Lifetime:     time.Hour,
			MemoryShards: 8,
		}},
		log: logger.Discard(),
	}
	t.Cleanup(a.close)
	ctx := context.Background()

	folders, files, err := a.cacheBackends(ctx)
	require.NoError(t, err)
	assert.NotSame(t, folders, files)
	assert.Len(t, a.memory, 2)

	again, _, err := a.cacheBackends(ctx)
	require.NoError(t, err)
	assert.Same(t, folders, again)

	_, err = folders.SetIfAbsent(ctx, "k", []byte("folder"), time.Hour, cache.Tag(1))
	require.NoError(t, err)
	stored, err := files.SetIfAbsent(ctx, "k", []byte("file"), time.Hour, cache.Tag(1))
	require.NoError(t, err)
	assert.True(t, stored, "the file cache must not see folder entries")

	require.NoError(t, files.FlushTag(ctx, cache.Tag(1)))
	value, found, err := folders.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("folder"), value)
}
