package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/adapters"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
)

type TableConfig struct {
	DateWidth     int
	HorseWidth    int
	TypeWidth     int
	MinutesWidth  int
	HealthWidth   int
	CalendarWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		DateWidth:     10,
		HorseWidth:    20,
		TypeWidth:     24,
		MinutesWidth:  8,
		HealthWidth:   24,
		CalendarWidth: 3,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const summaryTmpl = `
Training summary: {{entity .Criteria}}
Period: {{bound .Criteria.Start}} to {{bound .Criteria.End}}

Sessions: {{.View.Result.Stats.Count}}
Average activity: {{printf "%.1f" .View.Result.Stats.AverageActivity}}
Total minutes: {{.View.Result.Stats.TotalMinutes}}
Healthy: {{.View.Result.Stats.HealthyPercentage}}% ({{band .View.Result.Stats.HealthyPercentage}})

=== Training types ===
{{range .View.Result.Categories}}{{.Name}}: {{.Count}}
{{else}}none
{{end}}
=== Daily activity ===
{{range .View.Result.Series}}{{.DateKey}}: {{printf "%.1f" .Average}}
{{else}}none
{{end}}
{{separator}}
{{formatRow "Date" "Horse" "Type" "Minutes" "Health"}}
{{separator}}
{{range .View.Table}}{{formatRow .Date .Horse .TrainingType .Minutes .Health}}
{{end}}{{separator}}
`

const calendarTmpl = `
{{if .Window.Empty}}No training days to show.
{{else}}Calendar: {{key .Window.Start}} to {{key .Window.End}}

{{range .Grid.Headers}}{{cell .}}{{end}}
{{range $i, $c := .Grid.Cells}}{{if and (gt $i 0) (eq (mod $i 7) 0)}}
{{end}}{{day $c}}{{end}}

* training recorded
{{end}}`

type summaryData struct {
	Criteria domain.FilterCriteria
	View     domain.DashboardView
}

type calendarData struct {
	Window domain.CalendarWindow
	Grid   domain.CalendarGrid
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"formatRow": func(date, horse, kind, minutes, health string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*s | %-*s |",
				c.config.DateWidth, date,
				c.config.HorseWidth, horse,
				c.config.TypeWidth, kind,
				c.config.MinutesWidth, minutes,
				c.config.HealthWidth, health)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.DateWidth+2),
				strings.Repeat("-", c.config.HorseWidth+2),
				strings.Repeat("-", c.config.TypeWidth+2),
				strings.Repeat("-", c.config.MinutesWidth+2),
				strings.Repeat("-", c.config.HealthWidth+2))
		},
		"entity": func(cr domain.FilterCriteria) string {
			if cr.AllEntities() {
				return "all horses"
			}
			return cr.Entity
		},
		"bound": func(d *civil.Date) string {
			if d == nil {
				return "open"
			}
			return dates.DateKey(*d)
		},
		"band": adapters.HealthBand,
		"key":  dates.DateKey,
		"cell": func(s string) string {
			return fmt.Sprintf("%*s", c.config.CalendarWidth+1, s)
		},
		"mod": func(a, b int) int { return a % b },
		"day": func(cell domain.GridCell) string {
			switch {
			case cell.Blank:
				return strings.Repeat(" ", c.config.CalendarWidth+1)
			case cell.Active:
				return fmt.Sprintf("%*d*", c.config.CalendarWidth, cell.Day)
			default:
				return fmt.Sprintf("%*d ", c.config.CalendarWidth, cell.Day)
			}
		},
	}
}

func (c *Reporter) Summary(criteria domain.FilterCriteria, view domain.DashboardView) error {
	return c.execute("summary", summaryTmpl, summaryData{Criteria: criteria, View: view})
}

func (c *Reporter) Calendar(window domain.CalendarWindow, grid domain.CalendarGrid) error {
	return c.execute("calendar", calendarTmpl, calendarData{Window: window, Grid: grid})
}

func (c *Reporter) Horses(horses []string) error {
	for _, h := range horses {
		if _, err := fmt.Fprintln(c.writer, h); err != nil {
			return err
		}
	}
	return nil
}

func (c *Reporter) execute(name, tmpl string, data interface{}) error {
	t, err := template.New(name).Funcs(c.funcs()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}
