// Package transient tracks local files that only live as long as their owner.
package transient

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Registry collects paths and removes them on Close
type Registry struct {
	mu    sync.Mutex
	paths []string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers path for removal
func (r *Registry) Add(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

// Paths returns a copy of the registered paths
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Close removes every registered file that still exists and empties the registry
func (r *Registry) Close() error {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.mu.Unlock()

	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}
