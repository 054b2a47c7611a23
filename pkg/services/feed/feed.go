package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

var ErrEmptyFeed = errors.New("feed has no header row")

// Source produces the rows of one published sheet.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawRow, error)
}

type HTTPConfig struct {
	Timeout  time.Duration
	RetryMax int
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:  30 * time.Second,
		RetryMax: 3,
	}
}

type HTTPSource struct {
	profile domain.FeedProfile
	client  *retryablehttp.Client
}

func NewHTTPSource(profile domain.FeedProfile, cfg HTTPConfig) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &HTTPSource{profile: profile, client: client}
}

func (s *HTTPSource) Name() string {
	return s.profile.Name
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	logger := zerolog.Ctx(ctx)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.profile.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for feed %s: %w", s.profile.Name, err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.profile.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", s.profile.Name, resp.StatusCode)
	}

	rows, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.profile.Name, err)
	}

	logger.Debug().
		Str("feed", s.profile.Name).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("feed fetched")
	return rows, nil
}

// ParseCSV reads a header row followed by data rows. Short rows get blank
// values for the missing columns and surplus cells are ignored.
func ParseCSV(r io.Reader) ([]domain.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFeed
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([]domain.RawRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}

		row := make(domain.RawRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// StaticSource serves fixed rows. Used by the CLI for local CSV files and in tests.
type StaticSource struct {
	name string
	rows []domain.RawRow
	err  error
}

func NewStaticSource(name string, rows []domain.RawRow, err error) *StaticSource {
	return &StaticSource{name: name, rows: rows, err: err}
}

func (s *StaticSource) Name() string {
	return s.name
}

func (s *StaticSource) Fetch(_ context.Context) ([]domain.RawRow, error) {
	return s.rows, s.err
}

// FileSource reads a CSV export from disk on every fetch.
type FileSource struct {
	name string
	path string
}

func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

func (s *FileSource) Name() string {
	return s.name
}

func (s *FileSource) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", s.name, err)
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.name, err)
	}
	zerolog.Ctx(ctx).Debug().Str("feed", s.name).Int("rows", len(rows)).Msg("feed read from file")
	return rows, nil
}
