package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore keeps blobs as files under <root>/<name>/<sha256(key)>.
type FSStore struct {
	name string
	dir  string
}

func NewFSStore(name, root string) (*FSStore, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FSStore{name: name, dir: dir}, nil
}

func (s *FSStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:]))
}

func (s *FSStore) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("blob loaded", slog.String("store", s.name), slog.String("key", key), slog.Int("size", len(blob)))
	return blob, nil
}

// Save writes through a temp file and renames, so overwrites are
// atomic and repeat saves converge on the same state.
func (s *FSStore) Save(ctx context.Context, key string, blob []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	slog.Debug("blob saved", slog.String("store", s.name), slog.String("key", key), slog.Int("size", len(blob)))
	return nil
}

func (s *FSStore) Close() error { return nil }
