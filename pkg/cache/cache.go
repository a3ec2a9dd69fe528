// Package cache provides keyed, idempotent storage of raw page bytes.
// Blobs are keyed by URL string; stores are looked up by logical name
// through a Registry.
package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound reports a genuine cache miss. Any other Load failure is a
// storage fault and must not be treated as a miss.
var ErrNotFound = errors.New("blob not found")

// BlobStore is the contract for persistent blob storage.
// Save is an idempotent upsert; Load returns ErrNotFound on a miss.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Close() error
}

// Registry maps a logical store name to its BlobStore handle. Handles
// are constructed lazily on first Get and keep the root they were
// created with; SetRoot only affects stores created afterwards.
type Registry struct {
	mu     sync.Mutex
	root   string
	stores map[string]BlobStore
}

func NewRegistry(root string) *Registry {
	return &Registry{
		root:   root,
		stores: make(map[string]BlobStore),
	}
}

func (r *Registry) Get(name string) (BlobStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[name]; ok {
		return s, nil
	}

	s, err := NewFSStore(name, r.root)
	if err != nil {
		return nil, err
	}
	r.stores[name] = s
	return s, nil
}

// Register installs a pre-built store under name, replacing any
// existing handle. This is how a logical name gets backed by something
// other than the default filesystem store (a PGStore, say).
func (r *Registry) Register(name string, s BlobStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[name] = s
}

func (r *Registry) SetRoot(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = path
}

func (r *Registry) Root() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root
}

// Close closes every registered store and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, s := range r.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, name)
	}
	return firstErr
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, rooted at
// $WEBFS_CACHE_ROOT or the user cache dir.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(DefaultRoot())
	})
	return defaultRegistry
}

// DefaultRoot resolves the cache root from the environment.
func DefaultRoot() string {
	if root := os.Getenv("WEBFS_CACHE_ROOT"); root != "" {
		return root
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "webfs")
	}
	return filepath.Join(os.TempDir(), "webfs")
}

// Get returns the named store from the default registry.
func Get(name string) (BlobStore, error) { return Default().Get(name) }

// Register installs a store in the default registry.
func Register(name string, s BlobStore) { Default().Register(name, s) }

// SetRoot configures the default registry's root for stores created
// after the call.
func SetRoot(path string) { Default().SetRoot(path) }

// Root returns the default registry's root.
func Root() string { return Default().Root() }
