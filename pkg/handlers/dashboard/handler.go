package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/de-tools/stable-atlas/pkg/adapters"
	"github.com/de-tools/stable-atlas/pkg/models/api"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/models/store"
	"github.com/de-tools/stable-atlas/pkg/services/aggregate"
	"github.com/de-tools/stable-atlas/pkg/services/dashboard"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb/snapshot"
	"github.com/rs/zerolog"
)

const (
	horseParam = "horse"
	fromParam  = "from"
	toParam    = "to"
	queryParam = "q"
	spanParam  = "span"
	spanMonth  = "month"
	limitParam = "limit"

	defaultLoadsLimit = 20
	maxLoadsLimit     = 100
)

type Handoff interface {
	Publish(ctx context.Context, criteria domain.FilterCriteria, records []domain.TrainingRecord) (domain.Snapshot, error)
	Consume(ctx context.Context) (domain.Snapshot, []domain.TrainingRecord, error)
}

// LoadHistory reads the recorded feed reloads, newest first.
type LoadHistory interface {
	List(ctx context.Context, limit int) ([]store.Load, error)
}

type Handler struct {
	dashboard dashboard.Service
	handoff   Handoff
	loads     LoadHistory
}

// NewHandler creates the dashboard handler. handoff and loads may be nil, in
// which case their endpoints answer 503.
func NewHandler(svc dashboard.Service, handoff Handoff, loads LoadHistory) *Handler {
	return &Handler{
		dashboard: svc,
		handoff:   handoff,
		loads:     loads,
	}
}

func (h *Handler) ListHorses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	horses, err := h.dashboard.Horses(ctx)
	if err != nil {
		h.serviceError(w, r, err, "failed to list horses")
		return
	}
	if horses == nil {
		horses = []string{}
	}

	writeJSON(w, logger, http.StatusOK, horses)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	criteria, err := parseCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.dashboard.View(ctx, criteria)
	if err != nil {
		h.serviceError(w, r, err, "failed to build dashboard")
		return
	}
	// q narrows the session table only; stats and charts keep the full filter.
	view.Table = aggregate.SearchTable(view.Table, r.URL.Query().Get(queryParam))

	writeJSON(w, logger, http.StatusOK, adapters.MapDomainViewToAPI(view))
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	criteria, err := parseCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	calendarOf := h.dashboard.Calendar
	if r.URL.Query().Get(spanParam) == spanMonth {
		calendarOf = h.dashboard.MonthCalendar
	}

	window, grid, err := calendarOf(ctx, criteria)
	if err != nil {
		h.serviceError(w, r, err, "failed to build calendar")
		return
	}

	writeJSON(w, logger, http.StatusOK, adapters.MapDomainCalendarToAPI(window, grid))
}

func (h *Handler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	q := r.URL.Query().Get(queryParam)

	records, err := h.dashboard.SearchRecords(ctx, q)
	if err != nil {
		h.serviceError(w, r, err, "failed to search records")
		return
	}

	writeJSON(w, logger, http.StatusOK, adapters.MapDomainGeneralToAPI(records))
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	summary, err := h.dashboard.Reload(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("reload failed")
		http.Error(w, "failed to reload feeds", http.StatusBadGateway)
		return
	}

	writeJSON(w, logger, http.StatusOK, adapters.MapDomainLoadSummaryToAPI(summary))
}

func (h *Handler) ListLoads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.loads == nil {
		http.Error(w, "load history is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultLoadsLimit
	if v := r.URL.Query().Get(limitParam); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid 'limit'. Expected a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLoadsLimit)
	}

	loads, err := h.loads.List(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list loads")
		http.Error(w, "failed to list loads", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, http.StatusOK, adapters.MapStoreLoadsToAPI(loads))
}

func (h *Handler) PublishHandoff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.handoff == nil {
		http.Error(w, "handoff storage is not configured", http.StatusServiceUnavailable)
		return
	}

	criteria, err := parseCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.dashboard.View(ctx, criteria)
	if err != nil {
		h.serviceError(w, r, err, "failed to build dashboard for handoff")
		return
	}

	snap, err := h.handoff.Publish(ctx, criteria, view.Result.Records)
	if err != nil {
		logger.Error().Err(err).Msg("failed to publish handoff")
		http.Error(w, "failed to publish handoff", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, http.StatusCreated, adapters.MapDomainSnapshotToAPI(snap))
}

func (h *Handler) GetHandoff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.handoff == nil {
		http.Error(w, "handoff storage is not configured", http.StatusServiceUnavailable)
		return
	}

	snap, records, err := h.handoff.Consume(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			http.Error(w, "no handoff available", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Msg("failed to consume handoff")
		http.Error(w, "failed to load handoff", http.StatusInternalServerError)
		return
	}

	view := h.dashboard.Render(records, snap.Criteria)
	view.LoadedAt = snap.CreatedAt

	writeJSON(w, logger, http.StatusOK, api.HandoffView{
		Snapshot:  adapters.MapDomainSnapshotToAPI(snap),
		Dashboard: adapters.MapDomainViewToAPI(view),
	})
}

func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, dashboard.ErrNotLoaded) {
		http.Error(w, "dashboard data is not loaded yet", http.StatusServiceUnavailable)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func parseCriteria(r *http.Request) (domain.FilterCriteria, error) {
	start, err := parseDateParam(r, fromParam)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	end, err := parseDateParam(r, toParam)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	return dashboard.Criteria(r.URL.Query().Get(horseParam), start, end), nil
}

// parseDateParam returns the zero date when the parameter is absent.
func parseDateParam(r *http.Request, name string) (civil.Date, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return civil.Date{}, nil
	}
	d, err := dates.ParseKey(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid '%s' date format. Expected format: YYYY-MM-DD", name)
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode response")
	}
}
