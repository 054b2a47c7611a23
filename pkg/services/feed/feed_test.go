package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trainingCSV = "\ufeffTimestamp,اسم الخيل,تقييم نشاط واستجابة الخيل\n" +
	"05/01/2026 10:00:00, نجمة ,4\n" +
	"\"20/01/2026\",برق\n"

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(trainingCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "05/01/2026 10:00:00", rows[0]["Timestamp"])
	assert.Equal(t, " نجمة ", rows[0]["اسم الخيل"])
	assert.Equal(t, "", rows[1]["تقييم نشاط واستجابة الخيل"])
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFeed)

	rows, err := ParseCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHTTPSource_Fetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(trainingCSV))
	}))
	defer srv.Close()

	src := NewHTTPSource(domain.FeedProfile{Name: "training", URL: srv.URL}, HTTPConfig{Timeout: time.Second, RetryMax: 2})

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "training", src.Name())
}

func TestHTTPSource_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewHTTPSource(domain.FeedProfile{Name: "records", URL: srv.URL}, HTTPConfig{Timeout: time.Second})

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training.csv")
	require.NoError(t, os.WriteFile(path, []byte(trainingCSV), 0o600))

	rows, err := NewFileSource("training", path).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "05/01/2026 10:00:00", rows[0]["Timestamp"])
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource("training", filepath.Join(t.TempDir(), "missing.csv")).Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
