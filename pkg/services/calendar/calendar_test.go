package calendar

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(key string) domain.TrainingRecord {
	d, _ := dates.ParseKey(key)
	return domain.TrainingRecord{Date: d, DateKey: key, Fields: domain.Fields{}}
}

func date(key string) *civil.Date {
	d, _ := dates.ParseKey(key)
	return &d
}

func activeKeysOf(w domain.CalendarWindow) []string {
	var out []string
	for _, d := range w.Days {
		if d.Active {
			out = append(out, dates.DateKey(d.Date))
		}
	}
	return out
}

func assertConsecutive(t *testing.T, w domain.CalendarWindow) {
	t.Helper()
	require.Len(t, w.Days, w.End.DaysSince(w.Start)+1)
	for i, d := range w.Days {
		assert.Equal(t, w.Start.AddDays(i), d.Date)
	}
}

func TestBuilder_DefaultTrailingWindow(t *testing.T) {
	b := NewBuilder()
	records := []domain.TrainingRecord{rec("2026-01-20"), rec("2026-01-01")}

	w := b.Build(records, nil, nil)

	assert.False(t, w.Empty)
	assert.Equal(t, "2025-12-22", dates.DateKey(w.Start))
	assert.Equal(t, "2026-01-20", dates.DateKey(w.End))
	assert.Len(t, w.Days, 30)
	assertConsecutive(t, w)
	assert.Equal(t, []string{"2026-01-01", "2026-01-20"}, activeKeysOf(w))
}

func TestBuilder_ExplicitRangeWithinCap(t *testing.T) {
	b := NewBuilder()
	records := []domain.TrainingRecord{rec("2026-03-02"), rec("2026-02-10")}

	w := b.Build(records, date("2026-02-01"), date("2026-02-15"))

	assert.Equal(t, "2026-02-01", dates.DateKey(w.Start))
	assert.Equal(t, "2026-02-15", dates.DateKey(w.End))
	assert.Len(t, w.Days, 15)
	assert.Equal(t, []string{"2026-02-10"}, activeKeysOf(w))

	exact := b.Build(records, date("2026-02-01"), date("2026-03-02"))
	assert.Len(t, exact.Days, 30)
	assert.Equal(t, "2026-02-01", dates.DateKey(exact.Start))
}

func TestBuilder_ExplicitRangeOverCapFallsBack(t *testing.T) {
	b := NewBuilder()
	records := []domain.TrainingRecord{rec("2026-01-20"), rec("2026-01-01")}

	w := b.Build(records, date("2025-12-07"), date("2026-01-20"))

	assert.Equal(t, 45, date("2026-01-20").DaysSince(*date("2025-12-07"))+1)
	assert.Equal(t, "2025-12-22", dates.DateKey(w.Start))
	assert.Equal(t, "2026-01-20", dates.DateKey(w.End))
	assert.Len(t, w.Days, 30)
}

func TestBuilder_InvertedRangeFallsBack(t *testing.T) {
	w := NewBuilder().Build([]domain.TrainingRecord{rec("2026-01-20")}, date("2026-01-10"), date("2026-01-05"))
	assert.Equal(t, "2026-01-20", dates.DateKey(w.End))
	assert.Len(t, w.Days, 30)
}

func TestBuilder_AnchorFallbacks(t *testing.T) {
	now := func() time.Time { return time.Date(2026, time.October, 14, 23, 30, 0, 0, time.UTC) }
	b := NewBuilder(WithClock(now), WithLocation(time.FixedZone("AST", 3*60*60)))

	t.Run("explicit end without records", func(t *testing.T) {
		w := b.Build(nil, date("2026-01-01"), date("2026-03-01"))
		assert.Equal(t, "2026-03-01", dates.DateKey(w.End))
		assert.Len(t, w.Days, 30)
		assert.Empty(t, activeKeysOf(w))
	})

	t.Run("today without records", func(t *testing.T) {
		w := b.Build(nil, date("2026-01-01"), nil)
		assert.Equal(t, "2026-10-15", dates.DateKey(w.End))
		assert.Len(t, w.Days, 30)
	})
}

func TestBuilder_EmptyInput(t *testing.T) {
	w := NewBuilder().Build(nil, nil, nil)
	assert.True(t, w.Empty)
	assert.Empty(t, w.Days)

	g := Grid(w)
	assert.Equal(t, 0, g.Offset)
	assert.Empty(t, g.Cells)
	assert.Len(t, g.Headers, 7)

	assert.True(t, NewBuilder().Month(nil).Empty)
}

func TestGrid_SundayStartHasOneBlank(t *testing.T) {
	// February 2026 starts on a Sunday.
	w := NewBuilder().Month([]domain.TrainingRecord{rec("2026-02-14")})
	require.Len(t, w.Days, 28)

	g := Grid(w)

	assert.Equal(t, 1, g.Offset)
	require.Len(t, g.Cells, 29)
	assert.True(t, g.Cells[0].Blank)
	assert.False(t, g.Cells[1].Blank)
	assert.Equal(t, 1, g.Cells[1].Day)
	assert.True(t, g.Cells[14].Active)
	assert.Equal(t, "س", g.Headers[0])
}

func TestGrid_SaturdayStartHasNoBlank(t *testing.T) {
	// August 2026 starts on a Saturday.
	g := Grid(NewBuilder().Month([]domain.TrainingRecord{rec("2026-08-03")}))
	assert.Equal(t, 0, g.Offset)
	assert.Len(t, g.Cells, 31)
}

func TestMonth_December(t *testing.T) {
	w := NewBuilder().Month([]domain.TrainingRecord{rec("2025-12-31"), rec("2025-11-02")})
	assert.Equal(t, "2025-12-01", dates.DateKey(w.Start))
	assert.Equal(t, "2025-12-31", dates.DateKey(w.End))
	assert.Equal(t, []string{"2025-12-31"}, activeKeysOf(w))
}
