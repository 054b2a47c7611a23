package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/de-tools/stable-atlas/pkg/services/aggregate"
	"github.com/de-tools/stable-atlas/pkg/services/calendar"
	"github.com/de-tools/stable-atlas/pkg/services/dates"
	"github.com/de-tools/stable-atlas/pkg/services/feed"
	"github.com/de-tools/stable-atlas/pkg/services/ingest"
	"github.com/spf13/viper"
)

const EnvPrefix = "STABLE_ATLAS"

type Columns struct {
	Timestamp    string `mapstructure:"timestamp"`
	FallbackDate string `mapstructure:"fallback_date"`
	Horse        string `mapstructure:"horse"`
	Rating       string `mapstructure:"rating"`
	Duration     string `mapstructure:"duration"`
	Health       string `mapstructure:"health"`
	TrainingType string `mapstructure:"training_type"`
	Attachment   string `mapstructure:"attachment"`
}

type HTTP struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max"`
}

type Settings struct {
	DateConvention  string        `mapstructure:"date_convention"`
	Timezone        string        `mapstructure:"timezone"`
	HealthySentinel string        `mapstructure:"healthy_sentinel"`
	HealthMatch     string        `mapstructure:"health_match"`
	UnspecifiedType string        `mapstructure:"unspecified_type"`
	WindowDays      int           `mapstructure:"window_days"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	DBPath          string        `mapstructure:"db_path"`
	Columns         Columns       `mapstructure:"columns"`
	HTTP            HTTP          `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	agg := aggregate.DefaultConfig()
	httpCfg := feed.DefaultHTTPConfig()

	v.SetDefault("date_convention", dates.DayFirst.String())
	v.SetDefault("timezone", "Local")
	v.SetDefault("healthy_sentinel", agg.HealthySentinel)
	v.SetDefault("health_match", string(agg.HealthMatch))
	v.SetDefault("unspecified_type", agg.UnspecifiedType)
	v.SetDefault("window_days", 30)
	v.SetDefault("refresh_interval", 10*time.Minute)
	v.SetDefault("db_path", "stable-atlas.db")
	v.SetDefault("columns.timestamp", ingest.DefaultDateColumn)
	v.SetDefault("columns.fallback_date", ingest.DefaultFallbackColumn)
	v.SetDefault("columns.horse", agg.Columns.Horse)
	v.SetDefault("columns.rating", agg.Columns.Rating)
	v.SetDefault("columns.duration", agg.Columns.Duration)
	v.SetDefault("columns.health", agg.Columns.Health)
	v.SetDefault("columns.training_type", agg.Columns.TrainingType)
	v.SetDefault("columns.attachment", agg.Columns.Attachment)
	v.SetDefault("http.timeout", httpCfg.Timeout)
	v.SetDefault("http.retry_max", httpCfg.RetryMax)
}

// LoadSettings reads settings from path (optional) with STABLE_ATLAS_* env overrides.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if _, err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolved holds settings converted into the types the services take.
type Resolved struct {
	Convention  dates.Convention
	Location    *time.Location
	HealthMatch aggregate.HealthMatch
}

func (s *Settings) Validate() (Resolved, error) {
	var r Resolved
	var err error

	if r.Convention, err = dates.ParseConvention(s.DateConvention); err != nil {
		return r, err
	}
	if r.HealthMatch, err = aggregate.ParseHealthMatch(s.HealthMatch); err != nil {
		return r, err
	}
	if r.Location, err = time.LoadLocation(s.Timezone); err != nil {
		return r, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	if s.WindowDays <= 0 || s.WindowDays > calendar.DefaultWindowDays {
		return r, fmt.Errorf("window_days must be between 1 and %d, got %d", calendar.DefaultWindowDays, s.WindowDays)
	}
	return r, nil
}

func (s *Settings) IngestConfig() ingest.Config {
	return ingest.Config{
		DateColumn:     s.Columns.Timestamp,
		FallbackColumn: s.Columns.FallbackDate,
	}
}

func (s *Settings) AggregateConfig() aggregate.Config {
	match, _ := aggregate.ParseHealthMatch(s.HealthMatch)
	return aggregate.Config{
		Columns: aggregate.Columns{
			Horse:        s.Columns.Horse,
			Rating:       s.Columns.Rating,
			Duration:     s.Columns.Duration,
			Health:       s.Columns.Health,
			TrainingType: s.Columns.TrainingType,
			Attachment:   s.Columns.Attachment,
		},
		HealthySentinel: s.HealthySentinel,
		HealthMatch:     match,
		UnspecifiedType: s.UnspecifiedType,
	}
}

func (s *Settings) HTTPConfig() feed.HTTPConfig {
	return feed.HTTPConfig{Timeout: s.HTTP.Timeout, RetryMax: s.HTTP.RetryMax}
}
