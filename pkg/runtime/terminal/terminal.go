package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/de-tools/stable-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/stable-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	loader   commands.Loader
	flags    *commands.FeedLoader
	reporter *export.Reporter
	logger   zerolog.Logger
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Logger *zerolog.Logger
	// Loader replaces the flag-driven feed loader. Used in tests.
	Loader commands.Loader
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		flags:    &commands.FeedLoader{},
		reporter: export.NewReporter(opts.Output),
		logger:   zerolog.Nop(),
	}
	if opts.Logger != nil {
		cli.logger = *opts.Logger
	}
	cli.loader = cli.flags
	if opts.Loader != nil {
		cli.loader = opts.Loader
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(cli.logger.WithContext(ctx))
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stable-atlas",
		Short:         "Horse training dashboard in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.flags.ConfigPath, "config", "c", "", "Path to the stable-atlas.yaml settings file")
	flags.StringVar(&cli.flags.FeedsPath, "feeds", defaultFeedsPath(), "Path to the feed registry file")
	flags.StringVar(&cli.flags.TrainingFile, "training-file", "", "Read training rows from a local CSV export instead of the feeds")
	flags.StringVar(&cli.flags.RecordsFile, "records-file", "", "Read general records from a local CSV export")

	cmd.AddCommand(commands.NewSummaryCmd(cli.loader, cli.reporter))
	cmd.AddCommand(commands.NewCalendarCmd(cli.loader, cli.reporter))
	cmd.AddCommand(commands.NewHorsesCmd(cli.loader, cli.reporter))

	return cmd
}

func defaultFeedsPath() string {
	usr, err := user.Current()
	if err != nil {
		return ".stablefeeds"
	}
	return fmt.Sprintf("%s/.stablefeeds", usr.HomeDir)
}
