package ingest

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/rs/zerolog"
)

const (
	DefaultDateColumn     = "Timestamp"
	DefaultFallbackColumn = "التاريخ"
)

type Config struct {
	DateColumn     string
	FallbackColumn string
}

func DefaultConfig() Config {
	return Config{
		DateColumn:     DefaultDateColumn,
		FallbackColumn: DefaultFallbackColumn,
	}
}

type Ingestor struct {
	cfg        Config
	normalizer *dates.Normalizer
}

func NewIngestor(cfg Config, normalizer *dates.Normalizer) *Ingestor {
	if cfg.DateColumn == "" {
		cfg.DateColumn = DefaultDateColumn
	}
	if normalizer == nil {
		normalizer = dates.NewNormalizer()
	}
	return &Ingestor{cfg: cfg, normalizer: normalizer}
}

// Ingest maps raw rows to training records in input order. Rows without a
// readable date are left out; the report says how many.
func (in *Ingestor) Ingest(ctx context.Context, rows []domain.RawRow) ([]domain.TrainingRecord, domain.IngestReport) {
	report := domain.IngestReport{Input: len(rows)}
	records := make([]domain.TrainingRecord, 0, len(rows))

	for _, row := range rows {
		fields := Clean(row)

		parsed, err := in.dateOf(fields)
		if err != nil {
			report.Dropped++
			continue
		}
		if parsed.Ambiguous {
			report.Ambiguous++
		}

		records = append(records, domain.TrainingRecord{
			Fields:  fields,
			Date:    parsed.Date,
			Time:    parsed.Time,
			DateKey: dates.DateKey(parsed.Date),
		})
	}
	report.Accepted = len(records)

	if report.Dropped > 0 || report.Ambiguous > 0 {
		zerolog.Ctx(ctx).Debug().
			Int("input", report.Input).
			Int("dropped", report.Dropped).
			Int("ambiguous", report.Ambiguous).
			Str("convention", in.normalizer.Convention().String()).
			Msg("ingested training rows")
	}

	return records, report
}

func (in *Ingestor) dateOf(fields domain.Fields) (dates.Parsed, error) {
	parsed, err := in.normalizer.Normalize(fields.Get(in.cfg.DateColumn))
	if err == nil || in.cfg.FallbackColumn == "" {
		return parsed, err
	}

	fallback, ferr := in.normalizer.Normalize(fields.Get(in.cfg.FallbackColumn))
	if ferr != nil {
		return dates.Parsed{}, errors.Join(err, ferr)
	}
	return fallback, nil
}

// IngestGeneral cleans general record rows and drops rows with no values at all.
func IngestGeneral(rows []domain.RawRow) []domain.GeneralRecord {
	out := make([]domain.GeneralRecord, 0, len(rows))
	for _, row := range rows {
		fields := Clean(row)
		if isBlank(fields) {
			continue
		}
		out = append(out, domain.GeneralRecord{Fields: fields})
	}
	return out
}

// Search returns the general records with any value containing q. An empty
// query matches nothing.
func Search(records []domain.GeneralRecord, q string) []domain.GeneralRecord {
	out := make([]domain.GeneralRecord, 0)
	for _, r := range records {
		if r.Fields.Contains(q) {
			out = append(out, r)
		}
	}
	return out
}

// Clean trims every key and value of row. When several headers trim to the
// same column, a non-empty value beats an empty one; between non-empty values
// the header that needed no trimming wins, then the lexically first header.
func Clean(row domain.RawRow) domain.Fields {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make(domain.Fields, len(row))
	for _, k := range keys {
		key, value := strings.TrimSpace(k), strings.TrimSpace(row[k])
		prev, seen := fields[key]
		if !seen || (prev == "" && value != "") || (value != "" && k == key) {
			fields[key] = value
		}
	}
	return fields
}

func isBlank(fields domain.Fields) bool {
	for _, v := range fields {
		if v != "" {
			return false
		}
	}
	return true
}
