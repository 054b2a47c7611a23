package commands

import (
	"github.com/de-tools/stable-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type CalendarCmd struct {
	filterFlags
	month    bool
	loader   Loader
	reporter *export.Reporter
}

func NewCalendarCmd(loader Loader, reporter *export.Reporter) *cobra.Command {
	cc := &CalendarCmd{loader: loader, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the training calendar",
		RunE:  cc.run,
	}
	cc.register(cmd)
	cmd.Flags().BoolVar(&cc.month, "month", false, "Show the whole month of the latest session")
	return cmd
}

func (cc *CalendarCmd) run(cmd *cobra.Command, _ []string) error {
	criteria, err := cc.criteria()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, err := cc.loader.Load(ctx)
	if err != nil {
		return err
	}

	calendarOf := svc.Calendar
	if cc.month {
		calendarOf = svc.MonthCalendar
	}

	window, grid, err := calendarOf(ctx, criteria)
	if err != nil {
		return err
	}
	return cc.reporter.Calendar(window, grid)
}
