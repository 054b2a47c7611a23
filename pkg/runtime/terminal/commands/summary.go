package commands

import (
	"github.com/de-tools/stable-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/stable-atlas/pkg/services/aggregate"
	"github.com/spf13/cobra"
)

type SummaryCmd struct {
	filterFlags
	search   string
	loader   Loader
	reporter *export.Reporter
}

func NewSummaryCmd(loader Loader, reporter *export.Reporter) *cobra.Command {
	sc := &SummaryCmd{loader: loader, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show training statistics and the session log",
		RunE:  sc.run,
	}
	sc.register(cmd)
	cmd.Flags().StringVar(&sc.search, "search", "", "Only list sessions whose row contains this text")
	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, _ []string) error {
	criteria, err := sc.criteria()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, err := sc.loader.Load(ctx)
	if err != nil {
		return err
	}

	view, err := svc.View(ctx, criteria)
	if err != nil {
		return err
	}
	view.Table = aggregate.SearchTable(view.Table, sc.search)
	return sc.reporter.Summary(criteria, view)
}
