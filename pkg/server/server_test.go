package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/stable-atlas/pkg/models/api"
	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/de-tools/stable-atlas/pkg/services/dashboard"
	"github.com/de-tools/stable-atlas/pkg/services/feed"
	"github.com/de-tools/stable-atlas/pkg/store/duckdb"
	duckdbloads "github.com/de-tools/stable-atlas/pkg/store/duckdb/loads"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainingRows = []domain.RawRow{
	{"Timestamp": "20/01/2026 09:00:00", "اسم الخيل": "نجمة", "تقييم نشاط واستجابة الخيل": "4", "ملاحظات صحية": "الخيل سليم تماماً"},
	{"Timestamp": "19/01/2026", "اسم الخيل": "برق", "تقييم نشاط واستجابة الخيل": "2"},
	{"Timestamp": "not a date", "اسم الخيل": "برق"},
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	svc := dashboard.NewService(dashboard.Dependencies{
		Training: []feed.Source{feed.NewStaticSource("training", trainingRows, nil)},
		Records: []feed.Source{feed.NewStaticSource("records", []domain.RawRow{
			{"اسم الخيل": "نجمة", "السلالة": "عربي أصيل"},
		}, nil)},
	})

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Dashboard: svc,
			Logger:    logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	t.Run("not loaded yet", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/horses")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("reload", func(t *testing.T) {
		resp, err := http.Post(testServer.URL+"/api/v1/reload", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		summary, err := decode[api.LoadSummary](resp.Body)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.InputRows)
		assert.Equal(t, 2, summary.AcceptedRows)
		assert.Equal(t, 1, summary.DroppedRows)
		assert.Equal(t, 1, summary.GeneralRecords)
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "ListHorses",
			path:           "/api/v1/horses",
			expectedStatus: http.StatusOK,
			expected:       []string{"برق", "نجمة"},
			parseResponse:  unmarshalResponse[[]string](),
		},
		{
			name:           "Dashboard_InvalidFromDate",
			path:           "/api/v1/dashboard?from=invalid-date",
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid 'from' date format. Expected format: YYYY-MM-DD\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "Dashboard_InvalidToDate",
			path:           "/api/v1/dashboard?to=invalid-date",
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid 'to' date format. Expected format: YYYY-MM-DD\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "Handoff_NotConfigured",
			path:           "/api/v1/handoff",
			expectedStatus: http.StatusServiceUnavailable,
			expected:       "handoff storage is not configured\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}

	t.Run("Dashboard", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/dashboard?horse=all")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		view, err := decode[api.Dashboard](resp.Body)
		require.NoError(t, err)
		assert.Equal(t, 2, view.Stats.Count)
		assert.Equal(t, 3.0, view.Stats.AverageActivity)
		assert.Equal(t, 50, view.Stats.HealthyPercentage)
		assert.Equal(t, "poor", view.Stats.HealthBand)
		assert.Equal(t, "2026-01-20", view.Records[0].DateKey)
		assert.Equal(t, "2026-01-20", view.Calendar.Window.End)
		assert.Equal(t, "2025-12-22", view.Calendar.Window.Start)
		assert.Len(t, view.Calendar.Window.Days, 30)
		assert.NotNil(t, view.LoadedAt)
	})

	t.Run("Search", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/records/search?q=%D8%B9%D8%B1%D8%A8%D9%8A")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		records, err := decode[[]api.GeneralRecord](resp.Body)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func TestWebAPI_ReloadFailure(t *testing.T) {
	svc := dashboard.NewService(dashboard.Dependencies{
		Training: []feed.Source{feed.NewStaticSource("training", nil, feed.ErrEmptyFeed)},
	})
	router := ConfigureRouter(Config{Dependencies: Dependencies{Dashboard: svc, Logger: zerolog.Nop()}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/reload", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWebAPI_LoadHistory(t *testing.T) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	history, err := duckdbloads.NewStore(db)
	require.NoError(t, err)

	svc := dashboard.NewService(dashboard.Dependencies{
		Training: []feed.Source{feed.NewStaticSource("training", trainingRows, nil)},
		Loads:    history,
	})
	router := ConfigureRouter(Config{Dependencies: Dependencies{
		Dashboard: svc,
		Loads:     history,
		Logger:    zerolog.Nop(),
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/loads?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	loads, err := decode[[]api.Load](rec.Body)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, 3, loads[0].InputRows)
	assert.Equal(t, 2, loads[0].AcceptedRows)
	assert.Equal(t, 1, loads[0].DroppedRows)
	assert.Empty(t, loads[0].Error)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}

func decode[T any](r io.Reader) (T, error) {
	var v T
	err := json.NewDecoder(r).Decode(&v)
	return v, err
}
