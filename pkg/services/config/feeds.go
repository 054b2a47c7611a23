package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// FeedRegistry lists the published sheets the dashboard reads from.
type FeedRegistry interface {
	GetFeeds(ctx context.Context) ([]domain.FeedProfile, error)
	GetFeed(ctx context.Context, name string) (domain.FeedProfile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// NewFeedRegistry loads an ini file with one section per feed:
//
//	[training]
//	kind = training
//	url  = https://docs.google.com/spreadsheets/d/e/.../pub?output=csv
func NewFeedRegistry(path string) (FeedRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &iniRegistry{cfg: cfg}, nil
}

// NewFeedRegistryFromBytes is NewFeedRegistry for in-memory content.
func NewFeedRegistryFromBytes(data []byte) (FeedRegistry, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetFeeds(_ context.Context) ([]domain.FeedProfile, error) {
	var feeds []domain.FeedProfile
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		feed, err := profileOf(section)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Name < feeds[j].Name })
	return feeds, nil
}

func (r *iniRegistry) GetFeed(_ context.Context, name string) (domain.FeedProfile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.FeedProfile{}, fmt.Errorf("feed %s not found", name)
	}
	return profileOf(section)
}

func profileOf(section *ini.Section) (domain.FeedProfile, error) {
	url := section.Key("url").String()
	if url == "" {
		return domain.FeedProfile{}, fmt.Errorf("feed %s has no url", section.Name())
	}

	kind := domain.FeedKind(section.Key("kind").MustString(string(domain.FeedKindTraining)))
	switch kind {
	case domain.FeedKindTraining, domain.FeedKindRecords:
	default:
		return domain.FeedProfile{}, fmt.Errorf("feed %s has unknown kind %q", section.Name(), kind)
	}

	return domain.FeedProfile{
		Name: section.Name(),
		Kind: kind,
		URL:  url,
	}, nil
}

// FeedsOfKind filters feeds by kind, keeping their order.
func FeedsOfKind(feeds []domain.FeedProfile, kind domain.FeedKind) []domain.FeedProfile {
	var out []domain.FeedProfile
	for _, f := range feeds {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
