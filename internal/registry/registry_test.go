package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string]string
	err    error
}

func (f *fakeKV) Key(parts ...string) string {
	key := "test:"
	for _, p := range parts {
		key += p
	}
	return key
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value.(string)
	return nil
}

func TestRedisRegistryRoundTrip(t *testing.T) {
	kv := &fakeKV{values: map[string]string{}}
	r := NewRedisRegistry(kv)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "cantoFal", "accessTokenForStorage1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "cantoFal", "accessTokenForStorage1", "abc"))

	value, ok, err := r.Get(ctx, "cantoFal", "accessTokenForStorage1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)
	assert.Contains(t, kv.values, "test:registry:cantoFal:accessTokenForStorage1")
}

func TestRedisRegistryWrapsErrors(t *testing.T) {
	r := NewRedisRegistry(&fakeKV{values: map[string]string{}, err: errors.New("down")})

	_, _, err := r.Get(context.Background(), "ns", "k")
	assert.ErrorIs(t, err, ErrRegistryUnavailable)
	assert.ErrorIs(t, r.Set(context.Background(), "ns", "k", "v"), ErrRegistryUnavailable)
}
