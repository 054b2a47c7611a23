package domain

import "time"

// Snapshot is a serialized filtered view handed off to another rendering context.
type Snapshot struct {
	ID        string
	Key       string
	CreatedAt time.Time
	Criteria  FilterCriteria
	Records   []SnapshotRecord
}

type SnapshotRecord struct {
	Fields  Fields
	DateKey string
}

// DashboardView bundles a filtered result with its calendar.
type DashboardView struct {
	Result   FilteredResult
	Window   CalendarWindow
	Grid     CalendarGrid
	Table    []TableRow
	LoadedAt time.Time
}

type FeedKind string

const (
	FeedKindTraining FeedKind = "training"
	FeedKindRecords  FeedKind = "records"
)

type FeedProfile struct {
	Name string
	Kind FeedKind
	URL  string
}

// LoadSummary describes the outcome of a reload.
type LoadSummary struct {
	Training IngestReport
	General  int
	LoadedAt time.Time
}
