package commands

import (
	"github.com/de-tools/stable-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

func NewHorsesCmd(loader Loader, reporter *export.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "horses",
		Short: "List the horses found in the training feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := loader.Load(ctx)
			if err != nil {
				return err
			}
			horses, err := svc.Horses(ctx)
			if err != nil {
				return err
			}
			return reporter.Horses(horses)
		},
	}
}
