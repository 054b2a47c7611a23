package loads

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/stable-atlas/pkg/models/store"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb"
)

// Store keeps a history of feed reloads.
type Store interface {
	Add(ctx context.Context, load store.Load) error
	List(ctx context.Context, limit int) ([]store.Load, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) Add(ctx context.Context, load store.Load) error {
	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO load_history (
			id, started_at, finished_at, input_rows, accepted_rows,
			dropped_rows, ambiguous_rows, general_rows, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		load.ID,
		load.StartedAt.UTC(),
		load.FinishedAt.UTC(),
		load.InputRows,
		load.AcceptedRows,
		load.DroppedRows,
		load.AmbiguousRows,
		load.GeneralRows,
		load.Error,
	)
	if err != nil {
		return fmt.Errorf("insert load: %w", err)
	}
	return nil
}

// List returns the most recent loads first.
func (s *defaultStore) List(ctx context.Context, limit int) ([]store.Load, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, fmt.Sprintf(`
		SELECT id, started_at, finished_at, input_rows, accepted_rows,
			dropped_rows, ambiguous_rows, general_rows, error
		FROM load_history
		ORDER BY started_at DESC
		LIMIT %d
	`, limit))
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	out := make([]store.Load, 0)
	for rows.Next() {
		var (
			l       store.Load
			loadErr sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.StartedAt, &l.FinishedAt, &l.InputRows, &l.AcceptedRows,
			&l.DroppedRows, &l.AmbiguousRows, &l.GeneralRows, &loadErr); err != nil {
			return nil, err
		}
		if loadErr.Valid {
			msg := loadErr.String
			l.Error = &msg
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
