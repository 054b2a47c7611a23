package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const LoadHistorySchema = `
	CREATE TABLE IF NOT EXISTS load_history (
		id VARCHAR PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		input_rows INTEGER NOT NULL,
		accepted_rows INTEGER NOT NULL,
		dropped_rows INTEGER NOT NULL,
		ambiguous_rows INTEGER NOT NULL,
		general_rows INTEGER NOT NULL,
		error VARCHAR NULL
	);
`
const SnapshotSchema = `
	CREATE TABLE IF NOT EXISTS handoff_snapshots (
		id VARCHAR PRIMARY KEY,
		key VARCHAR NOT NULL,
		payload VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	LoadHistorySchema,
	SnapshotSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
