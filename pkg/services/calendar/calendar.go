package calendar

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
)

const DefaultWindowDays = 30

// Headers are the Saturday-first weekday labels of the grid.
var Headers = []string{"س", "ح", "ن", "ث", "ر", "خ", "ج"}

type Builder struct {
	windowDays int
	loc        *time.Location
	now        func() time.Time
}

type Option func(*Builder)

func WithWindowDays(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.windowDays = n
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		windowDays: DefaultWindowDays,
		loc:        time.Local,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the display window for records. An explicit range is used as
// is when both ends are set and it spans at most the window size; otherwise
// the window trails back from the latest record, the explicit end, or today.
func (b *Builder) Build(records []domain.TrainingRecord, start, end *civil.Date) domain.CalendarWindow {
	if start != nil && end != nil && !end.Before(*start) && end.DaysSince(*start)+1 <= b.windowDays {
		return window(*start, *end, activeKeys(records))
	}

	var anchor civil.Date
	switch latest, ok := Latest(records); {
	case ok:
		anchor = latest
	case end != nil:
		anchor = *end
	case start != nil:
		anchor = dates.Today(b.now(), b.loc)
	default:
		return domain.CalendarWindow{Empty: true, Days: []domain.CalendarDay{}}
	}

	return window(anchor.AddDays(-(b.windowDays - 1)), anchor, activeKeys(records))
}

// Month returns the whole calendar month containing the latest record.
func (b *Builder) Month(records []domain.TrainingRecord) domain.CalendarWindow {
	latest, ok := Latest(records)
	if !ok {
		return domain.CalendarWindow{Empty: true, Days: []domain.CalendarDay{}}
	}
	first := civil.Date{Year: latest.Year, Month: latest.Month, Day: 1}
	last := civil.Date{Year: latest.Year, Month: latest.Month + 1, Day: 1}
	if latest.Month == time.December {
		last = civil.Date{Year: latest.Year + 1, Month: time.January, Day: 1}
	}
	return window(first, last.AddDays(-1), activeKeys(records))
}

// Grid lays the window out in seven Saturday-first columns with leading blanks.
func Grid(w domain.CalendarWindow) domain.CalendarGrid {
	grid := domain.CalendarGrid{
		Headers: append([]string(nil), Headers...),
		Cells:   []domain.GridCell{},
	}
	if w.Empty || len(w.Days) == 0 {
		return grid
	}

	grid.Offset = dates.SaturdayFirst(dates.Weekday(w.Days[0].Date))
	for i := 0; i < grid.Offset; i++ {
		grid.Cells = append(grid.Cells, domain.GridCell{Blank: true})
	}
	for _, d := range w.Days {
		grid.Cells = append(grid.Cells, domain.GridCell{
			Date:   d.Date,
			Day:    d.Date.Day,
			Active: d.Active,
		})
	}
	return grid
}

// Latest returns the most recent record date.
func Latest(records []domain.TrainingRecord) (civil.Date, bool) {
	if len(records) == 0 {
		return civil.Date{}, false
	}
	latest := records[0].Date
	for _, r := range records[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, true
}

func window(start, end civil.Date, active map[string]struct{}) domain.CalendarWindow {
	n := end.DaysSince(start) + 1
	w := domain.CalendarWindow{Start: start, End: end, Days: make([]domain.CalendarDay, 0, n)}
	for d := start; !d.After(end); d = d.AddDays(1) {
		_, ok := active[dates.DateKey(d)]
		w.Days = append(w.Days, domain.CalendarDay{Date: d, Active: ok})
	}
	return w
}

func activeKeys(records []domain.TrainingRecord) map[string]struct{} {
	keys := make(map[string]struct{}, len(records))
	for _, r := range records {
		keys[r.DateKey] = struct{}{}
	}
	return keys
}
