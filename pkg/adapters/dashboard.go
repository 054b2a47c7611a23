package adapters

import (
	"fmt"
	"math"

	"github.com/de-tools/stable-atlas/pkg/models/api"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/models/store"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
)

const (
	HealthBandGood = "good"
	HealthBandFair = "fair"
	HealthBandPoor = "poor"
)

// HealthBand buckets the healthy percentage for the gauge colour.
func HealthBand(pct int) string {
	switch {
	case pct > 85:
		return HealthBandGood
	case pct > 50:
		return HealthBandFair
	default:
		return HealthBandPoor
	}
}

func MapDomainRecordToAPI(r domain.TrainingRecord) api.Record {
	out := api.Record{
		DateKey: r.DateKey,
		Date:    dates.FormatDisplay(r.Date),
		Fields:  r.Fields,
	}
	if r.Time != nil {
		out.Time = fmt.Sprintf("%02d:%02d", r.Time.Hour, r.Time.Minute)
	}
	return out
}

func MapDomainStatsToAPI(s domain.Stats) api.Stats {
	return api.Stats{
		Count:             s.Count,
		AverageActivity:   round1(s.AverageActivity),
		TotalMinutes:      s.TotalMinutes,
		HealthyPercentage: s.HealthyPercentage,
		HealthBand:        HealthBand(s.HealthyPercentage),
	}
}

func MapDomainWindowToAPI(w domain.CalendarWindow) api.CalendarWindow {
	out := api.CalendarWindow{Empty: w.Empty, Days: make([]api.CalendarDay, 0, len(w.Days))}
	if !w.Empty {
		out.Start = dates.DateKey(w.Start)
		out.End = dates.DateKey(w.End)
	}
	for _, d := range w.Days {
		out.Days = append(out.Days, api.CalendarDay{DateKey: dates.DateKey(d.Date), Active: d.Active})
	}
	return out
}

func MapDomainGridToAPI(g domain.CalendarGrid) api.CalendarGrid {
	out := api.CalendarGrid{Headers: g.Headers, Offset: g.Offset, Cells: make([]api.GridCell, 0, len(g.Cells))}
	for _, c := range g.Cells {
		cell := api.GridCell{Blank: c.Blank, Active: c.Active}
		if !c.Blank {
			cell.DateKey = dates.DateKey(c.Date)
			cell.Day = c.Day
		}
		out.Cells = append(out.Cells, cell)
	}
	return out
}

func MapDomainCalendarToAPI(w domain.CalendarWindow, g domain.CalendarGrid) api.Calendar {
	return api.Calendar{Window: MapDomainWindowToAPI(w), Grid: MapDomainGridToAPI(g)}
}

func MapDomainViewToAPI(v domain.DashboardView) api.Dashboard {
	out := api.Dashboard{
		Records:    make([]api.Record, 0, len(v.Result.Records)),
		Stats:      MapDomainStatsToAPI(v.Result.Stats),
		Series:     make([]api.SeriesPoint, 0, len(v.Result.Series)),
		Categories: make([]api.CategoryCount, 0, len(v.Result.Categories)),
		Calendar:   MapDomainCalendarToAPI(v.Window, v.Grid),
		Table:      make([]api.TableRow, 0, len(v.Table)),
	}
	if !v.LoadedAt.IsZero() {
		loadedAt := v.LoadedAt
		out.LoadedAt = &loadedAt
	}
	for _, r := range v.Result.Records {
		out.Records = append(out.Records, MapDomainRecordToAPI(r))
	}
	for _, p := range v.Result.Series {
		out.Series = append(out.Series, api.SeriesPoint{DateKey: p.DateKey, Average: round1(p.Average)})
	}
	for _, c := range v.Result.Categories {
		out.Categories = append(out.Categories, api.CategoryCount{Name: c.Name, Count: c.Count})
	}
	for _, row := range v.Table {
		out.Table = append(out.Table, api.TableRow(row))
	}
	return out
}

func MapDomainGeneralToAPI(records []domain.GeneralRecord) []api.GeneralRecord {
	out := make([]api.GeneralRecord, 0, len(records))
	for _, r := range records {
		out = append(out, api.GeneralRecord{Fields: r.Fields})
	}
	return out
}

func MapDomainLoadSummaryToAPI(s domain.LoadSummary) api.LoadSummary {
	return api.LoadSummary{
		InputRows:      s.Training.Input,
		AcceptedRows:   s.Training.Accepted,
		DroppedRows:    s.Training.Dropped,
		AmbiguousRows:  s.Training.Ambiguous,
		GeneralRecords: s.General,
		LoadedAt:       s.LoadedAt,
	}
}

func MapStoreLoadsToAPI(loads []store.Load) []api.Load {
	out := make([]api.Load, 0, len(loads))
	for _, l := range loads {
		item := api.Load{
			ID:            l.ID,
			StartedAt:     l.StartedAt,
			FinishedAt:    l.FinishedAt,
			InputRows:     l.InputRows,
			AcceptedRows:  l.AcceptedRows,
			DroppedRows:   l.DroppedRows,
			AmbiguousRows: l.AmbiguousRows,
			GeneralRows:   l.GeneralRows,
		}
		if l.Error != nil {
			item.Error = *l.Error
		}
		out = append(out, item)
	}
	return out
}

func MapDomainSnapshotToAPI(s domain.Snapshot) api.Snapshot {
	return api.Snapshot{
		ID:        s.ID,
		Key:       s.Key,
		CreatedAt: s.CreatedAt,
		Records:   len(s.Records),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
