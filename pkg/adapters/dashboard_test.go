package adapters

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthBand(t *testing.T) {
	assert.Equal(t, HealthBandGood, HealthBand(90))
	assert.Equal(t, HealthBandFair, HealthBand(85))
	assert.Equal(t, HealthBandFair, HealthBand(51))
	assert.Equal(t, HealthBandPoor, HealthBand(50))
}

func TestMapDomainViewToAPI(t *testing.T) {
	day := civil.Date{Year: 2026, Month: time.February, Day: 1}
	view := domain.DashboardView{
		Result: domain.FilteredResult{
			Records: []domain.TrainingRecord{{
				Fields:  domain.Fields{"اسم الخيل": "نجمة"},
				Date:    day,
				Time:    &civil.Time{Hour: 7, Minute: 5},
				DateKey: "2026-02-01",
			}},
			Stats:      domain.Stats{Count: 1, AverageActivity: 3.66666, TotalMinutes: 30, HealthyPercentage: 100},
			Series:     []domain.SeriesPoint{{DateKey: "2026-02-01", Average: 3.66666}},
			Categories: []domain.CategoryCount{{Name: "لونج", Count: 1}},
		},
		Window: domain.CalendarWindow{Start: day, End: day, Days: []domain.CalendarDay{{Date: day, Active: true}}},
		Grid: domain.CalendarGrid{
			Headers: []string{"س", "ح", "ن", "ث", "ر", "خ", "ج"},
			Offset:  1,
			Cells:   []domain.GridCell{{Blank: true}, {Date: day, Day: 1, Active: true}},
		},
		Table: []domain.TableRow{{Date: "01/02/2026", Horse: "نجمة"}},
	}

	out := MapDomainViewToAPI(view)

	require.Len(t, out.Records, 1)
	assert.Equal(t, "01/02/2026", out.Records[0].Date)
	assert.Equal(t, "07:05", out.Records[0].Time)
	assert.Equal(t, 3.7, out.Stats.AverageActivity)
	assert.Equal(t, HealthBandGood, out.Stats.HealthBand)
	assert.Equal(t, 3.7, out.Series[0].Average)
	assert.Equal(t, "2026-02-01", out.Calendar.Window.Start)
	assert.Equal(t, "", out.Calendar.Grid.Cells[0].DateKey)
	assert.Equal(t, "2026-02-01", out.Calendar.Grid.Cells[1].DateKey)
	assert.Nil(t, out.LoadedAt)
	assert.Equal(t, "نجمة", out.Table[0].Horse)
}

func TestMapDomainWindowToAPI_Empty(t *testing.T) {
	out := MapDomainWindowToAPI(domain.CalendarWindow{Empty: true})
	assert.True(t, out.Empty)
	assert.Empty(t, out.Start)
	assert.NotNil(t, out.Days)
}
