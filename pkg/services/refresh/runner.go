package refresh

import (
	"context"
	"time"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Reloader is the part of the dashboard service the runner drives.
type Reloader interface {
	Reload(ctx context.Context) (domain.LoadSummary, error)
}

type RunnerConfig struct {
	Interval time.Duration
}

type RunnerProgress struct {
	Summary domain.LoadSummary
	Err     error
	At      time.Time
}

// Runner reloads the dashboard data on a fixed interval until its context ends.
type Runner struct {
	reloader Reloader
	config   RunnerConfig
	done     chan struct{}
	progress chan RunnerProgress
}

func NewRunner(reloader Reloader, config RunnerConfig) *Runner {
	if config.Interval <= 0 {
		config.Interval = 10 * time.Minute
	}
	return &Runner{
		reloader: reloader,
		config:   config,
		done:     make(chan struct{}),
		progress: make(chan RunnerProgress, 16),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports every reload attempt. Reports are dropped when nobody reads them.
func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("component", "refresh").Logger()
	defer close(r.done)
	defer close(r.progress)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("refresh stopped")
			return
		case <-ticker.C:
			summary, err := r.reloader.Reload(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("scheduled reload failed")
			}

			select {
			case r.progress <- RunnerProgress{Summary: summary, Err: err, At: time.Now()}:
			default:
			}
		}
	}
}
