package store

import "time"

type Load struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	InputRows     int
	AcceptedRows  int
	DroppedRows   int
	AmbiguousRows int
	GeneralRows   int
	Error         *string
}
