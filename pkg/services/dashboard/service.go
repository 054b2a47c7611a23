package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/models/store"
	"github.com/de-tools/stable-atlas/pkg/services/aggregate"
	"github.com/de-tools/stable-atlas/pkg/services/calendar"
	"github.com/de-tools/stable-atlas/pkg/services/feed"
	"github.com/de-tools/stable-atlas/pkg/services/ingest"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb/loads"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var ErrNotLoaded = errors.New("dashboard data not loaded")

type Service interface {
	Reload(ctx context.Context) (domain.LoadSummary, error)
	Horses(ctx context.Context) ([]string, error)
	View(ctx context.Context, criteria domain.FilterCriteria) (domain.DashboardView, error)
	Calendar(ctx context.Context, criteria domain.FilterCriteria) (domain.CalendarWindow, domain.CalendarGrid, error)
	// MonthCalendar covers the calendar month of the latest matching record.
	MonthCalendar(ctx context.Context, criteria domain.FilterCriteria) (domain.CalendarWindow, domain.CalendarGrid, error)
	SearchRecords(ctx context.Context, q string) ([]domain.GeneralRecord, error)
	// Render builds a view over records supplied by the caller, such as a rehydrated handoff.
	Render(records []domain.TrainingRecord, criteria domain.FilterCriteria) domain.DashboardView
}

// dataset is one immutable working set. A reload builds a new one and swaps it in.
type dataset struct {
	training []domain.TrainingRecord
	general  []domain.GeneralRecord
	loadedAt time.Time
}

type Dependencies struct {
	Training []feed.Source
	Records  []feed.Source
	Ingestor *ingest.Ingestor
	Engine   *aggregate.Engine
	Calendar *calendar.Builder
	// Loads is optional; when set every reload is recorded.
	Loads loads.Store
	// ReloadTimeout bounds a shared reload. Defaults to two minutes.
	ReloadTimeout time.Duration
}

const defaultReloadTimeout = 2 * time.Minute

type DefaultService struct {
	deps Dependencies
	now  func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	current *dataset
}

func NewService(deps Dependencies) *DefaultService {
	if deps.Engine == nil {
		deps.Engine = aggregate.NewEngine(aggregate.DefaultConfig())
	}
	if deps.Calendar == nil {
		deps.Calendar = calendar.NewBuilder()
	}
	if deps.Ingestor == nil {
		deps.Ingestor = ingest.NewIngestor(ingest.DefaultConfig(), nil)
	}
	if deps.ReloadTimeout <= 0 {
		deps.ReloadTimeout = defaultReloadTimeout
	}
	return &DefaultService{deps: deps, now: time.Now}
}

// Reload fetches every feed and replaces the working set. Concurrent calls
// share a single fetch that does not depend on any one caller's context;
// each caller stops waiting when its own context ends. On failure the
// previous working set is kept.
func (s *DefaultService) Reload(ctx context.Context) (domain.LoadSummary, error) {
	ch := s.group.DoChan("reload", func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deps.ReloadTimeout)
		defer cancel()
		return s.reload(shared)
	})

	select {
	case <-ctx.Done():
		return domain.LoadSummary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.LoadSummary{}, res.Err
		}
		return res.Val.(domain.LoadSummary), nil
	}
}

func (s *DefaultService) reload(ctx context.Context) (domain.LoadSummary, error) {
	logger := zerolog.Ctx(ctx)
	started := s.now()

	training, general, err := s.fetch(ctx)
	if err != nil {
		s.recordLoad(ctx, started, domain.LoadSummary{}, err)
		return domain.LoadSummary{}, err
	}

	records, report := s.deps.Ingestor.Ingest(ctx, training)
	set := &dataset{
		training: records,
		general:  ingest.IngestGeneral(general),
		loadedAt: s.now(),
	}

	s.mu.Lock()
	s.current = set
	s.mu.Unlock()

	summary := domain.LoadSummary{Training: report, General: len(set.general), LoadedAt: set.loadedAt}
	s.recordLoad(ctx, started, summary, nil)

	logger.Info().
		Int("training_rows", report.Input).
		Int("training_records", report.Accepted).
		Int("dropped", report.Dropped).
		Int("ambiguous", report.Ambiguous).
		Int("general_records", summary.General).
		Msg("dashboard data reloaded")
	return summary, nil
}

func (s *DefaultService) fetch(ctx context.Context) ([]domain.RawRow, []domain.RawRow, error) {
	trainingRows := make([][]domain.RawRow, len(s.deps.Training))
	generalRows := make([][]domain.RawRow, len(s.deps.Records))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.deps.Training {
		g.Go(func() error {
			rows, err := src.Fetch(gctx)
			if err != nil {
				return err
			}
			trainingRows[i] = rows
			return nil
		})
	}
	for i, src := range s.deps.Records {
		g.Go(func() error {
			rows, err := src.Fetch(gctx)
			if err != nil {
				return err
			}
			generalRows[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("reload feeds: %w", err)
	}

	return flatten(trainingRows), flatten(generalRows), nil
}

func (s *DefaultService) recordLoad(ctx context.Context, started time.Time, summary domain.LoadSummary, loadErr error) {
	if s.deps.Loads == nil {
		return
	}
	l := store.Load{
		ID:            uuid.NewString(),
		StartedAt:     started,
		FinishedAt:    s.now(),
		InputRows:     summary.Training.Input,
		AcceptedRows:  summary.Training.Accepted,
		DroppedRows:   summary.Training.Dropped,
		AmbiguousRows: summary.Training.Ambiguous,
		GeneralRows:   summary.General,
	}
	if loadErr != nil {
		msg := loadErr.Error()
		l.Error = &msg
	}
	if err := s.deps.Loads.Add(ctx, l); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record load")
	}
}

func (s *DefaultService) snapshot() (*dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNotLoaded
	}
	return s.current, nil
}

func (s *DefaultService) Horses(_ context.Context) ([]string, error) {
	set, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return s.deps.Engine.Horses(set.training), nil
}

func (s *DefaultService) View(_ context.Context, criteria domain.FilterCriteria) (domain.DashboardView, error) {
	set, err := s.snapshot()
	if err != nil {
		return domain.DashboardView{}, err
	}
	view := Compose(s.deps.Engine, s.deps.Calendar, set.training, criteria)
	view.LoadedAt = set.loadedAt
	return view, nil
}

func (s *DefaultService) Calendar(ctx context.Context, criteria domain.FilterCriteria) (domain.CalendarWindow, domain.CalendarGrid, error) {
	view, err := s.View(ctx, criteria)
	if err != nil {
		return domain.CalendarWindow{}, domain.CalendarGrid{}, err
	}
	return view.Window, view.Grid, nil
}

func (s *DefaultService) MonthCalendar(_ context.Context, criteria domain.FilterCriteria) (domain.CalendarWindow, domain.CalendarGrid, error) {
	set, err := s.snapshot()
	if err != nil {
		return domain.CalendarWindow{}, domain.CalendarGrid{}, err
	}
	window := s.deps.Calendar.Month(s.deps.Engine.Filter(set.training, criteria))
	return window, calendar.Grid(window), nil
}

func (s *DefaultService) SearchRecords(_ context.Context, q string) ([]domain.GeneralRecord, error) {
	set, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ingest.Search(set.general, q), nil
}

func (s *DefaultService) Render(records []domain.TrainingRecord, criteria domain.FilterCriteria) domain.DashboardView {
	return Compose(s.deps.Engine, s.deps.Calendar, records, criteria)
}

// Compose builds a full view from records without touching any shared state.
func Compose(
	engine *aggregate.Engine,
	builder *calendar.Builder,
	records []domain.TrainingRecord,
	criteria domain.FilterCriteria,
) domain.DashboardView {
	result := engine.Apply(records, criteria)
	window := builder.Build(result.Records, criteria.Start, criteria.End)
	return domain.DashboardView{
		Result: result,
		Window: window,
		Grid:   calendar.Grid(window),
		Table:  engine.TableRows(result.Records),
	}
}

// Criteria builds filter criteria, treating zero dates as unbounded.
func Criteria(entity string, start, end civil.Date) domain.FilterCriteria {
	c := domain.FilterCriteria{Entity: entity}
	if start != (civil.Date{}) {
		c.Start = &start
	}
	if end != (civil.Date{}) {
		c.End = &end
	}
	return c
}

func flatten(parts [][]domain.RawRow) []domain.RawRow {
	var out []domain.RawRow
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
