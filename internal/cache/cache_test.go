// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayden-Zhou/Scholar-Tool/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.CacheConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolutionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	node := types.PaperNode{
		PaperID:       "abc123",
		Title:         "Attention Is All You Need",
		Year:          2017,
		CitationCount: 90000,
		Authors:       []string{"Ashish Vaswani", "Noam Shazeer"},
	}
	require.NoError(t, s.PutResolved(ctx, "attention is all you need", node))

	got, ok, err := s.GetResolved(ctx, "attention is all you need")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, node, got)
}

func TestResolutionMiss(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.GetResolved(context.Background(), "never seen")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolutionOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutResolved(ctx, "q", types.PaperNode{PaperID: "first"}))
	require.NoError(t, s.PutResolved(ctx, "q", types.PaperNode{PaperID: "second"}))

	got, ok, err := s.GetResolved(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.PaperID)
}

func TestListingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	filter := types.RelationFilter{SinceYear: 2015}

	entries := []types.RelationEntry{
		{Paper: types.PaperNode{PaperID: "r1", Title: "First", Year: 2020, CitationCount: 10}, Influential: true},
		{Paper: types.PaperNode{PaperID: "r2", Year: 2018}},
	}
	require.NoError(t, s.PutListing(ctx, "seed", types.RelationReferences, filter, entries))

	got, ok, err := s.GetListing(ctx, "seed", types.RelationReferences, filter)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entries, got)
}

func TestListingKeyedByKindAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutListing(ctx, "seed", types.RelationReferences, types.RelationFilter{},
		[]types.RelationEntry{{Paper: types.PaperNode{PaperID: "r1"}}}))

	// Same paper, different kind: miss.
	_, ok, err := s.GetListing(ctx, "seed", types.RelationCitations, types.RelationFilter{})
	require.NoError(t, err)
	assert.False(t, ok)

	// Same paper and kind, different filter: miss.
	_, ok, err = s.GetListing(ctx, "seed", types.RelationReferences, types.RelationFilter{InfluentialOnly: true})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyListingIsAHit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutListing(ctx, "leaf", types.RelationReferences, types.RelationFilter{}, nil))

	got, ok, err := s.GetListing(ctx, "leaf", types.RelationReferences, types.RelationFilter{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestStatsAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutResolved(ctx, "q", types.PaperNode{PaperID: "p"}))
	require.NoError(t, s.PutListing(ctx, "p", types.RelationReferences, types.RelationFilter{}, nil))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Papers: 1, Resolutions: 1, Listings: 1}, st)

	require.NoError(t, s.Clear(ctx))
	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(types.CacheConfig{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.PutResolved(ctx, "q", types.PaperNode{PaperID: "p", Title: "Persistent"}))
	require.NoError(t, s.Close())

	s, err = NewStore(types.CacheConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.GetResolved(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Persistent", got.Title)
}

// --- Write-through fetcher ---

type scriptedSource struct {
	entries []types.RelationEntry
	err     error
	calls   int
}

func (s *scriptedSource) Relations(_ context.Context, _ string, _ types.RelationKind, _ types.RelationFilter) ([]types.RelationEntry, error) {
	s.calls++
	return s.entries, s.err
}

func TestFetcherCachesMiss(t *testing.T) {
	src := &scriptedSource{entries: []types.RelationEntry{{Paper: types.PaperNode{PaperID: "r1"}}}}
	f := &Fetcher{Source: src, Store: newTestStore(t)}
	ctx := context.Background()

	first, err := f.Relations(ctx, "seed", types.RelationReferences, types.RelationFilter{})
	require.NoError(t, err)
	second, err := f.Relations(ctx, "seed", types.RelationReferences, types.RelationFilter{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls, "second call should be served from cache")
}

func TestFetcherPropagatesSourceError(t *testing.T) {
	src := &scriptedSource{err: errors.New("rate limit exceeded")}
	f := &Fetcher{Source: src, Store: newTestStore(t)}

	_, err := f.Relations(context.Background(), "seed", types.RelationReferences, types.RelationFilter{})
	require.Error(t, err)

	// A failed fetch must not poison the cache.
	_, ok, err := f.Store.GetListing(context.Background(), "seed", types.RelationReferences, types.RelationFilter{})
	require.NoError(t, err)
	assert.False(t, ok)
}
