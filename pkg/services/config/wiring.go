package config

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/aggregate"
	"github.com/de-tools/stable-atlas/pkg/services/calendar"
	"github.com/de-tools/stable-atlas/pkg/services/dashboard"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/de-tools/stable-atlas/pkg/services/feed"
	"github.com/de-tools/stable-atlas/pkg/services/ingest"
	"github.com/rs/zerolog"
)

// Core holds the pure services built from validated settings.
type Core struct {
	Normalizer *dates.Normalizer
	Ingestor   *ingest.Ingestor
	Engine     *aggregate.Engine
	Calendar   *calendar.Builder
	// ReloadTimeout covers every attempt of one feed fetch.
	ReloadTimeout time.Duration
}

func (s *Settings) Core() (Core, error) {
	r, err := s.Validate()
	if err != nil {
		return Core{}, err
	}

	normalizer := dates.NewNormalizer(dates.WithConvention(r.Convention), dates.WithLocation(r.Location))
	return Core{
		Normalizer: normalizer,
		Ingestor:   ingest.NewIngestor(s.IngestConfig(), normalizer),
		Engine:     aggregate.NewEngine(s.AggregateConfig()),
		Calendar:   calendar.NewBuilder(calendar.WithWindowDays(s.WindowDays), calendar.WithLocation(r.Location)),

		ReloadTimeout: s.HTTP.Timeout * time.Duration(s.HTTP.RetryMax+1),
	}, nil
}

// Sources turns the registered feeds into HTTP sources grouped by kind.
func (s *Settings) Sources(ctx context.Context, registry FeedRegistry) (training, records []feed.Source, err error) {
	feeds, err := registry.GetFeeds(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	httpCfg := s.HTTPConfig()
	for _, p := range FeedsOfKind(feeds, domain.FeedKindTraining) {
		training = append(training, feed.NewHTTPSource(p, httpCfg))
	}
	for _, p := range FeedsOfKind(feeds, domain.FeedKindRecords) {
		records = append(records, feed.NewHTTPSource(p, httpCfg))
	}
	if len(training) == 0 {
		return nil, nil, fmt.Errorf("no %s feed registered", domain.FeedKindTraining)
	}
	return training, records, nil
}

// LogSources reports the feeds returned by Sources on the context logger.
func LogSources(ctx context.Context, training, records []feed.Source) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msgf("Found the following feeds:")
	for _, src := range training {
		logger.Info().Msgf("Name: `%s`, Kind: `%s`", src.Name(), domain.FeedKindTraining)
	}
	for _, src := range records {
		logger.Info().Msgf("Name: `%s`, Kind: `%s`", src.Name(), domain.FeedKindRecords)
	}
}

// Dependencies assembles everything the dashboard service needs except load history.
func (c Core) Dependencies(training, records []feed.Source) dashboard.Dependencies {
	return dashboard.Dependencies{
		Training: training,
		Records:  records,
		Ingestor: c.Ingestor,
		Engine:   c.Engine,
		Calendar: c.Calendar,

		ReloadTimeout: c.ReloadTimeout,
	}
}
