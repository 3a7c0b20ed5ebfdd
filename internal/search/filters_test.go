package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	var f SearchFilters
	f.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, DefaultLimit, f.Limit)
	require.Equal(t, SortRelevance, f.SortBy)
}

func TestNormalizeClampsLimit(t *testing.T) {
	f := SearchFilters{Page: -3, Limit: 5000, SortBy: "unknown"}
	f.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, MaxLimit, f.Limit)
	require.Equal(t, SortRelevance, f.SortBy)

	f = SearchFilters{Limit: 0}
	f.Normalize()
	require.Equal(t, DefaultLimit, f.Limit)

	f = SearchFilters{Limit: 42, SortBy: SortPriceHigh}
	f.Normalize()
	require.Equal(t, 42, f.Limit)
	require.Equal(t, SortPriceHigh, f.SortBy)
}

func TestBuildQueryResolvesSlugs(t *testing.T) {
	svc, _ := newTestService()

	q, err := svc.buildQuery(context.Background(), SearchFilters{Category: "smartphones", Brand: "vantel"})
	require.NoError(t, err)
	require.False(t, q.MatchNone)
	require.Equal(t, oid(101).Hex(), q.CategoryID)
	require.Equal(t, oid(202).Hex(), q.BrandID)
}

func TestBuildQueryUnknownSlugIsMatchNone(t *testing.T) {
	svc, _ := newTestService()

	q, err := svc.buildQuery(context.Background(), SearchFilters{Brand: "nope"})
	require.NoError(t, err)
	require.True(t, q.MatchNone)
}
