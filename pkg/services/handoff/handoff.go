// Package handoff serializes a filtered dashboard view so another rendering
// context can reproduce it without fetching the feeds again.
package handoff

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/models/store"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb/snapshot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultKey  = "dashboard:last-view"
	defaultKeep = 5
)

type payload struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Entity    string          `json:"entity"`
	Start     string          `json:"start,omitempty"`
	End       string          `json:"end,omitempty"`
	Records   []payloadRecord `json:"records"`
}

type payloadRecord struct {
	Fields  map[string]string `json:"fields"`
	DateKey string            `json:"date_key"`
}

type Service struct {
	db         *sql.DB
	snapshots  snapshot.Store
	normalizer *dates.Normalizer
	key        string
	keep       int
	now        func() time.Time
}

func NewService(db *sql.DB, snapshots snapshot.Store, normalizer *dates.Normalizer) *Service {
	if normalizer == nil {
		normalizer = dates.NewNormalizer()
	}
	return &Service{
		db:         db,
		snapshots:  snapshots,
		normalizer: normalizer,
		key:        DefaultKey,
		keep:       defaultKeep,
		now:        time.Now,
	}
}

// Build reduces records to their fields and date keys.
func Build(id string, createdAt time.Time, criteria domain.FilterCriteria, records []domain.TrainingRecord) domain.Snapshot {
	snap := domain.Snapshot{
		ID:        id,
		Key:       DefaultKey,
		CreatedAt: createdAt,
		Criteria:  criteria,
		Records:   make([]domain.SnapshotRecord, 0, len(records)),
	}
	for _, r := range records {
		snap.Records = append(snap.Records, domain.SnapshotRecord{Fields: r.Fields, DateKey: r.DateKey})
	}
	return snap
}

// Publish stores a snapshot of records under the handoff key, replacing older ones.
func (s *Service) Publish(ctx context.Context, criteria domain.FilterCriteria, records []domain.TrainingRecord) (domain.Snapshot, error) {
	snap := Build(uuid.NewString(), s.now().UTC(), criteria, records)
	snap.Key = s.key

	data, err := Encode(snap)
	if err != nil {
		return domain.Snapshot{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("begin handoff transaction: %w", err)
	}
	txCtx := duckdb.WithTransaction(ctx, tx)

	if err := s.snapshots.Save(txCtx, store.Snapshot{ID: snap.ID, Key: snap.Key, Payload: data, CreatedAt: snap.CreatedAt}); err != nil {
		_ = tx.Rollback()
		return domain.Snapshot{}, err
	}
	pruned, err := s.snapshots.Prune(txCtx, snap.Key, s.keep)
	if err != nil {
		_ = tx.Rollback()
		return domain.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("commit handoff transaction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("snapshot", snap.ID).
		Int("records", len(snap.Records)).
		Int64("pruned", pruned).
		Msg("handoff snapshot published")
	return snap, nil
}

// Consume loads the latest snapshot and rehydrates its records. Records whose
// date key no longer parses are dropped, like at ingestion.
func (s *Service) Consume(ctx context.Context) (domain.Snapshot, []domain.TrainingRecord, error) {
	row, err := s.snapshots.Latest(ctx, s.key)
	if err != nil {
		return domain.Snapshot{}, nil, err
	}
	snap, err := Decode(row.Payload)
	if err != nil {
		return domain.Snapshot{}, nil, err
	}
	snap.Key = row.Key
	return snap, s.Rehydrate(snap), nil
}

// Rehydrate rebuilds training records from a snapshot by normalizing each date key.
func (s *Service) Rehydrate(snap domain.Snapshot) []domain.TrainingRecord {
	out := make([]domain.TrainingRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		p, err := s.normalizer.Normalize(r.DateKey)
		if err != nil {
			continue
		}
		out = append(out, domain.TrainingRecord{
			Fields:  r.Fields,
			Date:    p.Date,
			DateKey: dates.DateKey(p.Date),
		})
	}
	return out
}

func Encode(snap domain.Snapshot) ([]byte, error) {
	p := payload{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt,
		Entity:    snap.Criteria.Entity,
		Start:     keyOrEmpty(snap.Criteria.Start),
		End:       keyOrEmpty(snap.Criteria.End),
		Records:   make([]payloadRecord, 0, len(snap.Records)),
	}
	for _, r := range snap.Records {
		p.Records = append(p.Records, payloadRecord{Fields: r.Fields, DateKey: r.DateKey})
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (domain.Snapshot, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := domain.Snapshot{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Criteria:  domain.FilterCriteria{Entity: p.Entity},
		Records:   make([]domain.SnapshotRecord, 0, len(p.Records)),
	}
	var err error
	if snap.Criteria.Start, err = keyPtr(p.Start); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Criteria.End, err = keyPtr(p.End); err != nil {
		return domain.Snapshot{}, err
	}
	for _, r := range p.Records {
		snap.Records = append(snap.Records, domain.SnapshotRecord{Fields: r.Fields, DateKey: r.DateKey})
	}
	return snap, nil
}

func keyOrEmpty(d *civil.Date) string {
	if d == nil {
		return ""
	}
	return dates.DateKey(*d)
}

func keyPtr(key string) (*civil.Date, error) {
	if key == "" {
		return nil, nil
	}
	d, err := dates.ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot criteria: %w", err)
	}
	return &d, nil
}
