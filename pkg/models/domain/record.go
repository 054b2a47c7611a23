package domain

import (
	"strings"

	"cloud.google.com/go/civil"
)

// Fields maps trimmed column names to trimmed cell values.
type Fields map[string]string

// Get returns the value for column or "" when it is absent.
func (f Fields) Get(column string) string {
	return f[column]
}

// Contains reports whether any value contains q, ignoring case.
func (f Fields) Contains(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return false
	}
	for _, v := range f {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// TrainingRecord is one ingested training session row.
type TrainingRecord struct {
	Fields  Fields
	Date    civil.Date
	Time    *civil.Time // display only
	DateKey string
}

// GeneralRecord is a row of the per-horse general records sheet.
type GeneralRecord struct {
	Fields Fields
}

type RawRow map[string]string

// IngestReport counts what happened to the rows of one ingestion pass.
type IngestReport struct {
	Input     int
	Accepted  int
	Dropped   int
	Ambiguous int
}
