// Package registry persists small namespaced values that must survive restarts,
// such as the access token of each storage.
package registry

import (
	"context"
	"errors"
)

var (
	ErrRegistryUnavailable = errors.New("registry unavailable")
)

// Registry reads and writes namespaced string values
type Registry interface {
	// Get returns the value and whether it was present
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
}
