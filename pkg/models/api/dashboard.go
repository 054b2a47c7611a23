package api

import "time"

type Record struct {
	DateKey string            `json:"date_key"`
	Date    string            `json:"date"`
	Time    string            `json:"time,omitempty"`
	Fields  map[string]string `json:"fields"`
}

type Stats struct {
	Count             int     `json:"count"`
	AverageActivity   float64 `json:"average_activity"`
	TotalMinutes      int     `json:"total_minutes"`
	HealthyPercentage int     `json:"healthy_percentage"`
	HealthBand        string  `json:"health_band"`
}

type SeriesPoint struct {
	DateKey string  `json:"date_key"`
	Average float64 `json:"average"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TableRow struct {
	Date         string `json:"date"`
	Time         string `json:"time,omitempty"`
	Horse        string `json:"horse"`
	TrainingType string `json:"training_type"`
	Minutes      string `json:"minutes"`
	Health       string `json:"health"`
	Healthy      bool   `json:"healthy"`
	Attachment   string `json:"attachment,omitempty"`
}

type CalendarDay struct {
	DateKey string `json:"date_key"`
	Active  bool   `json:"active"`
}

type CalendarWindow struct {
	Start string        `json:"start,omitempty"`
	End   string        `json:"end,omitempty"`
	Empty bool          `json:"empty"`
	Days  []CalendarDay `json:"days"`
}

type GridCell struct {
	Blank   bool   `json:"blank"`
	DateKey string `json:"date_key,omitempty"`
	Day     int    `json:"day,omitempty"`
	Active  bool   `json:"active"`
}

type CalendarGrid struct {
	Headers []string   `json:"headers"`
	Offset  int        `json:"offset"`
	Cells   []GridCell `json:"cells"`
}

type Calendar struct {
	Window CalendarWindow `json:"window"`
	Grid   CalendarGrid   `json:"grid"`
}

type Dashboard struct {
	Records    []Record        `json:"records"`
	Stats      Stats           `json:"stats"`
	Series     []SeriesPoint   `json:"series"`
	Categories []CategoryCount `json:"categories"`
	Calendar   Calendar        `json:"calendar"`
	Table      []TableRow      `json:"table"`
	LoadedAt   *time.Time      `json:"loaded_at,omitempty"`
}

type GeneralRecord struct {
	Fields map[string]string `json:"fields"`
}

type LoadSummary struct {
	InputRows      int       `json:"input_rows"`
	AcceptedRows   int       `json:"accepted_rows"`
	DroppedRows    int       `json:"dropped_rows"`
	AmbiguousRows  int       `json:"ambiguous_rows"`
	GeneralRecords int       `json:"general_records"`
	LoadedAt       time.Time `json:"loaded_at"`
}

type Load struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	InputRows     int       `json:"input_rows"`
	AcceptedRows  int       `json:"accepted_rows"`
	DroppedRows   int       `json:"dropped_rows"`
	AmbiguousRows int       `json:"ambiguous_rows"`
	GeneralRows   int       `json:"general_rows"`
	Error         string    `json:"error,omitempty"`
}

type Snapshot struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	Records   int       `json:"records"`
}

type HandoffView struct {
	Snapshot  Snapshot  `json:"snapshot"`
	Dashboard Dashboard `json:"dashboard"`
}
