package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devraulu/webfs/pkg/cache"
)

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewFSStore("html", t.TempDir())
	require.NoError(t, err)

	const key = "http://example.com/page"

	_, err = store.Load(ctx, key)
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, store.Save(ctx, key, []byte("first")))
	blob, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), blob)

	// upsert overwrites
	require.NoError(t, store.Save(ctx, key, []byte("second")))
	blob, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), blob)
}

func TestFSStoreKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewFSStore("html", t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "http://a/", []byte("a")))
	require.NoError(t, store.Save(ctx, "http://b/", []byte("b")))

	blob, err := store.Load(ctx, "http://a/")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), blob)
}

func TestRegistryReturnsSameHandle(t *testing.T) {
	reg := cache.NewRegistry(t.TempDir())

	first, err := reg.Get("html")
	require.NoError(t, err)
	second, err := reg.Get("html")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestRegistryRootChangeDoesNotMoveExistingStores(t *testing.T) {
	ctx := context.Background()
	rootA := t.TempDir()
	rootB := t.TempDir()

	reg := cache.NewRegistry(rootA)

	html, err := reg.Get("html")
	require.NoError(t, err)

	reg.SetRoot(rootB)
	assert.Equal(t, rootB, reg.Root())

	again, err := reg.Get("html")
	require.NoError(t, err)
	assert.Same(t, html, again)

	// the pinned handle still writes under rootA
	require.NoError(t, html.Save(ctx, "http://example.com/", []byte("x")))
	entries, err := os.ReadDir(filepath.Join(rootA, "html"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// stores created after the change land under rootB
	other, err := reg.Get("img")
	require.NoError(t, err)
	require.NoError(t, other.Save(ctx, "http://example.com/a.png", []byte("y")))
	entries, err = os.ReadDir(filepath.Join(rootB, "img"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type stubStore struct{}

func (*stubStore) Load(context.Context, string) ([]byte, error) { return nil, cache.ErrNotFound }
func (*stubStore) Save(context.Context, string, []byte) error   { return nil }
func (*stubStore) Close() error                                 { return nil }

func TestRegistryRegisterBacksName(t *testing.T) {
	reg := cache.NewRegistry(t.TempDir())

	stub := &stubStore{}
	reg.Register("html", stub)

	got, err := reg.Get("html")
	require.NoError(t, err)
	assert.Same(t, stub, got)

	// root changes don't displace a registered store
	reg.SetRoot(t.TempDir())
	got, err = reg.Get("html")
	require.NoError(t, err)
	assert.Same(t, stub, got)
}

func TestRegistryRegisterReplacesExistingHandle(t *testing.T) {
	reg := cache.NewRegistry(t.TempDir())

	first, err := reg.Get("html")
	require.NoError(t, err)

	stub := &stubStore{}
	reg.Register("html", stub)

	got, err := reg.Get("html")
	require.NoError(t, err)
	assert.Same(t, stub, got)
	assert.NotSame(t, first, got)
}

func TestDefaultRootFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEBFS_CACHE_ROOT", dir)

	assert.Equal(t, dir, cache.DefaultRoot())
}
