package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"velora_back_end/internal/search"
)

func filtersFor(t *testing.T, rawQuery string) search.SearchFilters {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/search/products?"+rawQuery, nil)

	return parseSearchFilters(c)
}

func TestParseSearchFiltersFull(t *testing.T) {
	f := filtersFor(t, "q=laptop&category=laptops&brand=technova&minPrice=100&maxPrice=900&rating=4&inStock=true&featured=false&tags=gaming,%20ultra%20,&sortBy=price-low&page=2&limit=10")

	require.Equal(t, "laptop", f.Query)
	require.Equal(t, "laptops", f.Category)
	require.Equal(t, "technova", f.Brand)
	require.NotNil(t, f.MinPrice)
	require.Equal(t, 100.0, *f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	require.Equal(t, 900.0, *f.MaxPrice)
	require.NotNil(t, f.Rating)
	require.Equal(t, 4.0, *f.Rating)
	require.NotNil(t, f.InStock)
	require.True(t, *f.InStock)
	require.NotNil(t, f.Featured)
	require.False(t, *f.Featured)
	require.Equal(t, []string{"gaming", "ultra"}, f.Tags)
	require.Equal(t, search.SortPriceLow, f.SortBy)
	require.Equal(t, 2, f.Page)
	require.Equal(t, 10, f.Limit)
}

func TestParseSearchFiltersDefaults(t *testing.T) {
	f := filtersFor(t, "")

	require.Empty(t, f.Query)
	require.Nil(t, f.MinPrice)
	require.Nil(t, f.MaxPrice)
	require.Nil(t, f.Rating)
	require.Nil(t, f.InStock)
	require.Nil(t, f.Featured)
	require.Empty(t, f.Tags)
	require.Equal(t, search.SortRelevance, f.SortBy)
	require.Zero(t, f.Page)
	require.Zero(t, f.Limit)
}

func TestParseSearchFiltersIgnoresGarbageNumbers(t *testing.T) {
	f := filtersFor(t, "minPrice=abc&maxPrice=&rating=cinq&page=x&limit=y")

	require.Nil(t, f.MinPrice)
	require.Nil(t, f.MaxPrice)
	require.Nil(t, f.Rating)
	require.Zero(t, f.Page)
	require.Zero(t, f.Limit)
}

func TestParseSearchFiltersTernaryLeftUnsetOnOtherValues(t *testing.T) {
	f := filtersFor(t, "inStock=yes&featured=1")

	require.Nil(t, f.InStock)
	require.Nil(t, f.Featured)
}
