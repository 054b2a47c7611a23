package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/stable-atlas/pkg/models/store"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb"
)

var ErrNotFound = errors.New("snapshot not found")

type Store interface {
	Save(ctx context.Context, snap store.Snapshot) error
	Latest(ctx context.Context, key string) (*store.Snapshot, error)
	Prune(ctx context.Context, key string, keep int) (int64, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Save(ctx context.Context, snap store.Snapshot) error {
	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO handoff_snapshots (id, key, payload, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Key, string(snap.Payload), snap.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *defaultStore) Latest(ctx context.Context, key string) (*store.Snapshot, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, key, payload, created_at
		FROM handoff_snapshots
		WHERE key = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, key)

	var (
		snap    store.Snapshot
		payload string
	)
	if err := row.Scan(&snap.ID, &snap.Key, &payload, &snap.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	snap.Payload = []byte(payload)
	return &snap, nil
}

// Prune deletes all but the newest keep snapshots stored under key.
func (s *defaultStore) Prune(ctx context.Context, key string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := fmt.Sprintf(`
		DELETE FROM handoff_snapshots
		WHERE key = ? AND id NOT IN (
			SELECT id FROM handoff_snapshots WHERE key = ? ORDER BY created_at DESC LIMIT %d
		)
	`, keep)
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query, key, key)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return n, nil
}
