package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
)

// Engine filters training records and derives the dashboard statistics.
// It holds no state beyond its configuration.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.HealthMatch == "" {
		cfg.HealthMatch = HealthMatchExact
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Apply filters records by criteria and computes stats, the per-day series and
// the training type breakdown. records is never modified.
func (e *Engine) Apply(records []domain.TrainingRecord, criteria domain.FilterCriteria) domain.FilteredResult {
	filtered := e.Filter(records, criteria)
	return domain.FilteredResult{
		Records:    filtered,
		Stats:      e.Stats(filtered),
		Series:     e.Series(filtered),
		Categories: e.Categories(filtered),
	}
}

// Filter returns the records matching criteria, newest first.
func (e *Engine) Filter(records []domain.TrainingRecord, criteria domain.FilterCriteria) []domain.TrainingRecord {
	var startKey, endKey string
	if criteria.Start != nil {
		startKey = dates.DateKey(*criteria.Start)
	}
	if criteria.End != nil {
		endKey = dates.DateKey(*criteria.End)
	}

	out := make([]domain.TrainingRecord, 0, len(records))
	for _, r := range records {
		if !criteria.AllEntities() && r.Fields.Get(e.cfg.Columns.Horse) != criteria.Entity {
			continue
		}
		if startKey != "" && r.DateKey < startKey {
			continue
		}
		if endKey != "" && r.DateKey > endKey {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i], out[j])
	})
	return out
}

func newer(a, b domain.TrainingRecord) bool {
	if a.DateKey != b.DateKey {
		return a.DateKey > b.DateKey
	}
	return secondOfDay(a) > secondOfDay(b)
}

// secondOfDay orders untimed records after timed ones on the same day.
func secondOfDay(r domain.TrainingRecord) int {
	if r.Time == nil {
		return -1
	}
	return r.Time.Hour*3600 + r.Time.Minute*60 + r.Time.Second
}

func (e *Engine) Stats(records []domain.TrainingRecord) domain.Stats {
	stats := domain.Stats{Count: len(records)}
	if stats.Count == 0 {
		return stats
	}

	var ratingSum float64
	healthy := 0
	for _, r := range records {
		ratingSum += e.rating(r)
		stats.TotalMinutes += leadingInt(r.Fields.Get(e.cfg.Columns.Duration))
		if e.isHealthy(r) {
			healthy++
		}
	}

	stats.AverageActivity = ratingSum / float64(stats.Count)
	stats.HealthyPercentage = int(math.Round(float64(healthy) / float64(stats.Count) * 100))
	return stats
}

// Buckets groups ratings by date key, oldest first.
func (e *Engine) Buckets(records []domain.TrainingRecord) []domain.AggregateBucket {
	byKey := make(map[string]*domain.AggregateBucket)
	for _, r := range records {
		b, ok := byKey[r.DateKey]
		if !ok {
			b = &domain.AggregateBucket{DateKey: r.DateKey}
			byKey[r.DateKey] = b
		}
		b.Sum += e.rating(r)
		b.Count++
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.AggregateBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

// Series returns the average rating per day in ascending date order.
func (e *Engine) Series(records []domain.TrainingRecord) []domain.SeriesPoint {
	buckets := e.Buckets(records)
	out := make([]domain.SeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.SeriesPoint{DateKey: b.DateKey, Average: b.Average()})
	}
	return out
}

// Categories counts records per training type in first-seen order.
func (e *Engine) Categories(records []domain.TrainingRecord) []domain.CategoryCount {
	index := make(map[string]int)
	out := make([]domain.CategoryCount, 0)
	for _, r := range records {
		name := r.Fields.Get(e.cfg.Columns.TrainingType)
		if name == "" {
			name = e.cfg.UnspecifiedType
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, domain.CategoryCount{Name: name})
		}
		out[i].Count++
	}
	return out
}

// Horses lists the distinct non-empty horse names, sorted.
func (e *Engine) Horses(records []domain.TrainingRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		h := r.Fields.Get(e.cfg.Columns.Horse)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// TableRows projects records into display rows, keeping their order.
func (e *Engine) TableRows(records []domain.TrainingRecord) []domain.TableRow {
	out := make([]domain.TableRow, 0, len(records))
	for _, r := range records {
		attachment := r.Fields.Get(e.cfg.Columns.Attachment)
		if !strings.HasPrefix(attachment, "http") {
			attachment = ""
		}
		row := domain.TableRow{
			Date:         dates.FormatDisplay(r.Date),
			Horse:        r.Fields.Get(e.cfg.Columns.Horse),
			TrainingType: r.Fields.Get(e.cfg.Columns.TrainingType),
			Minutes:      r.Fields.Get(e.cfg.Columns.Duration),
			Health:       r.Fields.Get(e.cfg.Columns.Health),
			Healthy:      e.isHealthy(r),
			Attachment:   attachment,
		}
		if r.Time != nil {
			row.Time = fmt.Sprintf("%02d:%02d", r.Time.Hour, r.Time.Minute)
		}
		out = append(out, row)
	}
	return out
}

// SearchTable keeps the rows with any cell containing q. An empty query keeps all rows.
func SearchTable(rows []domain.TableRow, q string) []domain.TableRow {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	out := make([]domain.TableRow, 0)
	for _, row := range rows {
		text := strings.ToLower(strings.Join([]string{
			row.Date, row.Time, row.Horse, row.TrainingType, row.Minutes, row.Health,
		}, " "))
		if strings.Contains(text, q) {
			out = append(out, row)
		}
	}
	return out
}

func (e *Engine) isHealthy(r domain.TrainingRecord) bool {
	note := r.Fields.Get(e.cfg.Columns.Health)
	if e.cfg.HealthMatch == HealthMatchTrimmed {
		return strings.TrimSpace(note) == strings.TrimSpace(e.cfg.HealthySentinel)
	}
	return note == e.cfg.HealthySentinel
}

func (e *Engine) rating(r domain.TrainingRecord) float64 {
	return leadingFloat(r.Fields.Get(e.cfg.Columns.Rating))
}

// leadingFloat reads the decimal prefix of s ("4 من 5" is 4, "3.5/5" is 3.5). Anything else is 0.
func leadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits, dot := 0, false
scan:
	for ; end < len(s); end++ {
		switch c := s[end]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			break scan
		}
	}
	if digits == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// leadingInt reads the integer prefix of s ("45 دقيقة" is 45). Anything else is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
