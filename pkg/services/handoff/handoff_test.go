package handoff

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	snapshots, err := snapshot.NewStore(db)
	require.NoError(t, err)
	return NewService(db, snapshots, dates.NewNormalizer())
}

func records() []domain.TrainingRecord {
	return []domain.TrainingRecord{
		{
			Fields:  domain.Fields{"اسم الخيل": "نجمة", "Timestamp": "20/01/2026 08:00:00"},
			Date:    civil.Date{Year: 2026, Month: time.January, Day: 20},
			Time:    &civil.Time{Hour: 8},
			DateKey: "2026-01-20",
		},
		{
			Fields:  domain.Fields{"اسم الخيل": "نجمة", "Timestamp": "05/01/2026"},
			Date:    civil.Date{Year: 2026, Month: time.January, Day: 5},
			DateKey: "2026-01-05",
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	start := civil.Date{Year: 2026, Month: time.January, Day: 1}
	criteria := domain.FilterCriteria{Entity: "نجمة", Start: &start}
	created := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)

	snap := Build("id-1", created, criteria, records())
	data, err := Encode(snap)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, "نجمة", got.Criteria.Entity)
	require.NotNil(t, got.Criteria.Start)
	assert.Equal(t, start, *got.Criteria.Start)
	assert.Nil(t, got.Criteria.End)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "2026-01-20", got.Records[0].DateKey)

	_, err = Decode([]byte(`{"start":"01/01/2026"}`))
	assert.Error(t, err)
}

func TestService_PublishAndConsume(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, _, err := svc.Consume(ctx)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	published, err := svc.Publish(ctx, domain.FilterCriteria{Entity: domain.AllEntities}, records())
	require.NoError(t, err)
	assert.NotEmpty(t, published.ID)
	assert.Equal(t, DefaultKey, published.Key)

	snap, rehydrated, err := svc.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, published.ID, snap.ID)
	require.Len(t, rehydrated, 2)
	assert.Equal(t, records()[0].Date, rehydrated[0].Date)
	assert.Equal(t, "2026-01-05", rehydrated[1].DateKey)
	assert.Nil(t, rehydrated[0].Time)
	assert.Equal(t, "نجمة", rehydrated[0].Fields.Get("اسم الخيل"))
}

func TestService_PublishKeepsLatest(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	tick := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	svc.keep = 2

	var last domain.Snapshot
	for i := 0; i < 4; i++ {
		var err error
		last, err = svc.Publish(ctx, domain.FilterCriteria{}, records()[:1])
		require.NoError(t, err)
	}

	snap, _, err := svc.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, snap.ID)
}

func TestService_RehydrateDropsBadKeys(t *testing.T) {
	svc := NewService(nil, nil, nil)
	out := svc.Rehydrate(domain.Snapshot{Records: []domain.SnapshotRecord{
		{DateKey: "2026-01-05"},
		{DateKey: "garbage"},
	}})
	require.Len(t, out, 1)
	assert.Equal(t, "2026-01-05", out[0].DateKey)
}
