package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atollkit/atoll/internal/harness"
	"github.com/atollkit/atoll/internal/store"
)

func TestRenderCachedWithoutCache(t *testing.T) {
	s, err := harness.Load("testdata/scenarios/greeting.yaml")
	require.NoError(t, err)

	markup, err := renderCached(context.Background(), s, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Contains(t, markup, "Hello, Ada")
}

func TestRenderCachedFillsAndHits(t *testing.T) {
	s, err := harness.Load("testdata/scenarios/greeting.yaml")
	require.NoError(t, err)

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := renderCached(ctx, s, cache, log)
	require.NoError(t, err)

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "first render fills the cache")

	second, err := renderCached(ctx, s, cache, log)
	require.NoError(t, err)
	assert.Equal(t, first, second, "the hit serves the cached bytes")
}

func TestPageCacheKeyDeterministic(t *testing.T) {
	s, err := harness.Load("testdata/scenarios/greeting.yaml")
	require.NoError(t, err)

	a, err := pageCacheKey(s)
	require.NoError(t, err)
	b, err := pageCacheKey(s)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := harness.Load("testdata/scenarios/expected-fallback.yaml")
	require.NoError(t, err)
	c, err := pageCacheKey(other)
	require.NoError(t, err)
	assert.Equal(t, a, c, "the key covers page composition, not divergences")
}
