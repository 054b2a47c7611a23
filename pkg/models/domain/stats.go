package domain

type Stats struct {
	Count             int
	AverageActivity   float64
	TotalMinutes      int
	HealthyPercentage int
}

// AggregateBucket accumulates ratings for one date key.
type AggregateBucket struct {
	DateKey string
	Sum     float64
	Count   int
}

func (b AggregateBucket) Average() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

type SeriesPoint struct {
	DateKey string
	Average float64
}

type CategoryCount struct {
	Name  string
	Count int
}

// FilteredResult is everything a presentation adapter needs for one filter application.
type FilteredResult struct {
	Records    []TrainingRecord // newest first
	Stats      Stats
	Series     []SeriesPoint // oldest first
	Categories []CategoryCount
}

// CategoryMap returns the categorical counts keyed by name.
func (r FilteredResult) CategoryMap() map[string]int {
	out := make(map[string]int, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Name] = c.Count
	}
	return out
}

// TableRow is a display-ready row of the training log table.
type TableRow struct {
	Date         string
	Time         string // HH:MM, empty when the timestamp had no time
	Horse        string
	TrainingType string
	Minutes      string
	Health       string
	Healthy      bool
	Attachment   string
}
