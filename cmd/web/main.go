package main

import (
	"fmt"
	"net"
	"os"
	"os/user"

	"github.com/de-tools/stable-atlas/pkg/server"
	"github.com/de-tools/stable-atlas/pkg/services/config"
	"github.com/de-tools/stable-atlas/pkg/services/dashboard"
	"github.com/de-tools/stable-atlas/pkg/services/handoff"
	"github.com/de-tools/stable-atlas/pkg/services/refresh"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb"
	duckdbloads "github.com/de-tools/stable-atlas/pkg/store/duckdb/loads"
	duckdbsnapshot "github.com/de-tools/stable-atlas/pkg/store/duckdb/snapshot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	feedsPath string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Stable Atlas",
		RunE:  runServer,
	}

	usr, _ := user.Current()
	defaultFeeds := ".stablefeeds"
	if usr != nil {
		defaultFeeds = fmt.Sprintf("%s/.stablefeeds", usr.HomeDir)
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the stable-atlas.yaml settings file")
	rootCmd.Flags().StringVar(&feedsPath, "feeds", defaultFeeds,
		"Path to the feed registry file (default is $HOME/.stablefeeds)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	core, err := settings.Core()
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	registry, err := config.NewFeedRegistry(feedsPath)
	if err != nil {
		return fmt.Errorf("failed to create feed registry: %w", err)
	}
	training, records, err := settings.Sources(ctx, registry)
	if err != nil {
		return err
	}

	logger.Info().Msgf("Feed registry found at `%s` successfully loaded.", feedsPath)
	config.LogSources(ctx, training, records)

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: settings.DBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	loadStore, err := duckdbloads.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create load history store: %w", err)
	}
	snapshotStore, err := duckdbsnapshot.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	deps := core.Dependencies(training, records)
	deps.Loads = loadStore
	svc := dashboard.NewService(deps)

	if _, err := svc.Reload(ctx); err != nil {
		// The API answers 503 until a later refresh succeeds.
		logger.Error().Err(err).Msg("initial reload failed")
	}

	refreshCtrl := refresh.NewController(svc, refresh.RunnerConfig{Interval: settings.RefreshInterval})
	if err := refreshCtrl.Start(ctx); err != nil {
		return fmt.Errorf("failed to start refresh: %w", err)
	}
	defer func() { _ = refreshCtrl.Cancel(ctx) }()

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Dashboard: svc,
			Handoff:   handoff.NewService(db, snapshotStore, core.Normalizer),
			Loads:     loadStore,
			Logger:    logger,
		},
	})

	return api.Start()
}
