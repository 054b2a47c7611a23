package domain

import "cloud.google.com/go/civil"

type CalendarDay struct {
	Date   civil.Date
	Active bool
}

// CalendarWindow is an inclusive, consecutive run of days.
// Empty is set when there was nothing to anchor the window on.
type CalendarWindow struct {
	Start civil.Date
	End   civil.Date
	Days  []CalendarDay
	Empty bool
}

// GridCell is one cell of a 7-column calendar grid. Blank cells pad the first row.
type GridCell struct {
	Blank  bool
	Date   civil.Date
	Day    int
	Active bool
}

type CalendarGrid struct {
	Headers []string
	Offset  int
	Cells   []GridCell
}
