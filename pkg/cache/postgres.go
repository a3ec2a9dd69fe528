package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// PGStore is a Postgres-backed BlobStore for deployments that want the
// page cache in a database instead of on local disk. Rows are keyed by
// (store, key) so several logical stores can share one table.
type PGStore struct {
	db    *sql.DB
	store string
}

func NewPGStore(db *sql.DB, store string) *PGStore {
	return &PGStore{db: db, store: store}
}

func (s *PGStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT blob FROM blobs
		WHERE store = $1 AND key = $2`,
		s.store, key,
	).Scan(&blob)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *PGStore) Save(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (store, key, blob, saved_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (store, key) DO UPDATE
		SET blob = EXCLUDED.blob, saved_at = EXCLUDED.saved_at`,
		s.store, key, blob,
	)
	if err != nil {
		return err
	}

	slog.Debug("blob saved", slog.String("store", s.store), slog.String("key", key), slog.Int("size", len(blob)))
	return nil
}

func (s *PGStore) Close() error {
	return s.db.Close()
}
