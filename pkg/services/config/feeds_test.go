package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/stable-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedsIni = `
[training]
kind = training
url = https://example.com/training.csv

[records]
kind = records
url = https://example.com/records.csv

[empty]
`

func TestFeedRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".stablefeeds")
	require.NoError(t, os.WriteFile(path, []byte(feedsIni), 0o644))

	reg, err := NewFeedRegistry(path)
	require.NoError(t, err)

	ctx := context.Background()
	feeds, err := reg.GetFeeds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.FeedProfile{
		{Name: "records", Kind: domain.FeedKindRecords, URL: "https://example.com/records.csv"},
		{Name: "training", Kind: domain.FeedKindTraining, URL: "https://example.com/training.csv"},
	}, feeds)

	f, err := reg.GetFeed(ctx, "training")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/training.csv", f.URL)

	_, err = reg.GetFeed(ctx, "missing")
	assert.Error(t, err)

	assert.Len(t, FeedsOfKind(feeds, domain.FeedKindRecords), 1)
}

func TestFeedRegistry_InvalidSections(t *testing.T) {
	reg, err := NewFeedRegistryFromBytes([]byte("[x]\nkind = photos\nurl = https://example.com\n"))
	require.NoError(t, err)
	_, err = reg.GetFeeds(context.Background())
	assert.Error(t, err)

	reg, err = NewFeedRegistryFromBytes([]byte("[x]\nkind = training\n"))
	require.NoError(t, err)
	_, err = reg.GetFeeds(context.Background())
	assert.Error(t, err)

	_, err = NewFeedRegistry(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
