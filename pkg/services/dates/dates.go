// Package dates turns the loosely formatted timestamps found in spreadsheet
// exports into calendar dates and the YYYY-MM-DD keys used for grouping.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var (
	ErrUnparseable = errors.New("unparseable date")
	ErrAmbiguous   = errors.New("ambiguous day/month order")
)

// Convention decides how a non year-first A/B/YYYY value is read.
type Convention int

const (
	DayFirst Convention = iota
	MonthFirst
	// Strict rejects values where both day-first and month-first readings are
	// valid and name different days.
	Strict
)

func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "day_first", "dmy":
		return DayFirst, nil
	case "month_first", "mdy":
		return MonthFirst, nil
	case "strict":
		return Strict, nil
	}
	return DayFirst, fmt.Errorf("unknown date convention %q", s)
}

func (c Convention) String() string {
	switch c {
	case MonthFirst:
		return "month_first"
	case Strict:
		return "strict"
	default:
		return "day_first"
	}
}

// Parsed is the outcome of a successful normalization.
type Parsed struct {
	Date civil.Date
	Time *civil.Time
	// Ambiguous is set when the day/month order was decided by convention alone.
	Ambiguous bool
}

// genericLayouts are tried first. They are all year-first so none of them can
// silently swap day and month.
var genericLayouts = []struct {
	layout string
	zoned  bool
	timed  bool
}{
	{time.RFC3339Nano, true, true},
	{"2006-01-02T15:04Z07:00", true, true},
	{"2006-01-02 15:04:05Z07:00", true, true},
	{"2006-01-02T15:04:05.999999999", false, true},
	{"2006-01-02 15:04:05.999999999", false, true},
	{"2006-01-02T15:04", false, true},
	{"2006-01-02 15:04", false, true},
	{"2006-01-02", false, false},
}

var numericPattern = regexp.MustCompile(
	`^(\d{1,4})[/-](\d{1,2})[/-](\d{1,4})(?:[ T,]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

type Normalizer struct {
	convention Convention
	loc        *time.Location
}

type Option func(*Normalizer)

func WithConvention(c Convention) Option {
	return func(n *Normalizer) { n.convention = c }
}

// WithLocation sets the zone that zoned timestamps are converted into before
// their calendar fields are read. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{convention: DayFirst, loc: time.Local}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) Convention() Convention {
	return n.convention
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize parses raw into a calendar date. It returns ErrUnparseable (or
// ErrAmbiguous in Strict mode) when raw cannot be read as a single date.
func (n *Normalizer) Normalize(raw string) (Parsed, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Parsed{}, ErrUnparseable
	}

	if p, ok := n.parseGeneric(s); ok {
		return p, nil
	}

	return n.parseNumeric(s)
}

func (n *Normalizer) parseGeneric(s string) (Parsed, bool) {
	for _, l := range genericLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if l.zoned {
			t = t.In(n.loc)
		}
		p := Parsed{Date: civil.DateOf(t)}
		if l.timed {
			ct := civil.TimeOf(t)
			p.Time = &ct
		}
		return p, true
	}
	return Parsed{}, false
}

func (n *Normalizer) parseNumeric(s string) (Parsed, error) {
	m := numericPattern.FindStringSubmatch(s)
	if m == nil {
		return Parsed{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	c, _ := strconv.Atoi(m[3])

	var p Parsed
	switch {
	case len(m[1]) == 4:
		p.Date = civil.Date{Year: a, Month: time.Month(b), Day: c}
	case len(m[3]) == 4:
		dayFirst := civil.Date{Year: c, Month: time.Month(b), Day: a}
		monthFirst := civil.Date{Year: c, Month: time.Month(a), Day: b}
		p.Ambiguous = dayFirst.IsValid() && monthFirst.IsValid() && a != b

		switch n.convention {
		case MonthFirst:
			p.Date = monthFirst
		case Strict:
			if p.Ambiguous {
				return Parsed{}, fmt.Errorf("%w: %q", ErrAmbiguous, s)
			}
			p.Date = dayFirst
			if !dayFirst.IsValid() {
				p.Date = monthFirst
			}
		default:
			p.Date = dayFirst
		}
	default:
		return Parsed{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	if !p.Date.IsValid() {
		return Parsed{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	if m[4] != "" {
		h, _ := strconv.Atoi(m[4])
		mi, _ := strconv.Atoi(m[5])
		sec := 0
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		t := civil.Time{Hour: h, Minute: mi, Second: sec}
		if !t.IsValid() {
			return Parsed{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
		}
		p.Time = &t
	}
	return p, nil
}

// DateKey formats d as a zero-padded YYYY-MM-DD from its own calendar fields.
func DateKey(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateOf reads the calendar fields of t in t's own location.
func DateOf(t time.Time) civil.Date {
	return civil.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseKey parses a YYYY-MM-DD key.
func ParseKey(key string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(key))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrUnparseable, key)
	}
	return d, nil
}

// FormatDisplay renders d as DD/MM/YYYY, or "--" for the zero date.
func FormatDisplay(d civil.Date) string {
	if d == (civil.Date{}) {
		return "--"
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// SaturdayFirst maps a Sunday-based weekday onto a week starting on Saturday.
func SaturdayFirst(w time.Weekday) int {
	return (int(w) + 1) % 7
}

// Weekday returns the day of the week of d.
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// Today is the current calendar date in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(now.In(loc))
}
