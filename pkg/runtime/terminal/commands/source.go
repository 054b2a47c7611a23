package commands

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/config"
	"github.com/de-tools/stable-atlas/pkg/services/dashboard"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/de-tools/stable-atlas/pkg/services/feed"
	"github.com/spf13/cobra"
)

// Loader builds a loaded dashboard service for one command invocation.
type Loader interface {
	Load(ctx context.Context) (dashboard.Service, error)
}

// FeedLoader reads settings and feeds as configured by the global flags.
// Local CSV files take precedence over the feed registry.
type FeedLoader struct {
	ConfigPath   string
	FeedsPath    string
	TrainingFile string
	RecordsFile  string
}

func (l *FeedLoader) Load(ctx context.Context) (dashboard.Service, error) {
	settings, err := config.LoadSettings(l.ConfigPath)
	if err != nil {
		return nil, err
	}
	core, err := settings.Core()
	if err != nil {
		return nil, err
	}

	var training, records []feed.Source
	if l.TrainingFile != "" {
		training = []feed.Source{feed.NewFileSource(string(domain.FeedKindTraining), l.TrainingFile)}
		if l.RecordsFile != "" {
			records = []feed.Source{feed.NewFileSource(string(domain.FeedKindRecords), l.RecordsFile)}
		}
	} else {
		registry, err := config.NewFeedRegistry(l.FeedsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load feed registry: %w", err)
		}
		training, records, err = settings.Sources(ctx, registry)
		if err != nil {
			return nil, err
		}
	}

	svc := dashboard.NewService(core.Dependencies(training, records))
	if _, err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// filterFlags are shared by the commands that take a horse and date range.
type filterFlags struct {
	horse string
	from  string
	to    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.horse, "horse", domain.AllEntities, "Horse to show, or \"all\"")
	cmd.Flags().StringVar(&f.from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "End date (YYYY-MM-DD)")
}

func (f *filterFlags) criteria() (domain.FilterCriteria, error) {
	start, err := parseDateFlag("from", f.from)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	end, err := parseDateFlag("to", f.to)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	return dashboard.Criteria(f.horse, start, end), nil
}

func parseDateFlag(name, value string) (civil.Date, error) {
	if value == "" {
		return civil.Date{}, nil
	}
	d, err := dates.ParseKey(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid '%s' date format. Expected format: YYYY-MM-DD", name)
	}
	return d, nil
}
