package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/models"
)

func oid(n int) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(fmt.Sprintf("65%022d", n))
	if err != nil {
		panic(err)
	}
	return id
}

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }

// seedStore construit un catalogue de 9 produits actifs (plus un désactivé)
// sur 3 catégories et 2 marques. 4 smartphones tombent dans la fenêtre de
// prix 100000..200000.
func seedStore() *memStore {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(days int) time.Time { return base.AddDate(0, 0, days) }

	catSmartphones := models.Category{ID: oid(101), Name: "Smartphones", Slug: "smartphones", IsActive: true}
	catLaptops := models.Category{ID: oid(102), Name: "Laptops", Slug: "laptops", IsActive: true}
	catAudio := models.Category{ID: oid(103), Name: "Audio", Slug: "audio", IsActive: true}

	brandTechnova := models.Brand{ID: oid(201), Name: "Technova", Slug: "technova", IsActive: true}
	brandVantel := models.Brand{ID: oid(202), Name: "Vantel", Slug: "vantel", IsActive: true}

	mk := func(n int, name string, cat, brand primitive.ObjectID, price float64,
		rating float64, reviews int, qty int, featured bool, created time.Time, tags ...string) models.Product {
		p := models.Product{
			ID:            oid(n),
			Name:          name,
			Slug:          fmt.Sprintf("p-%d", n),
			Description:   name + " description",
			Price:         price,
			CategoryID:    cat,
			BrandID:       brand,
			StockQuantity: qty,
			Featured:      featured,
			Rating:        rating,
			ReviewCount:   reviews,
			Tags:          tags,
			IsActive:      true,
			CreatedAt:     created,
		}
		p.SyncStock()
		return p
	}

	products := []models.Product{
		mk(1, "Nova Smart X10", catSmartphones.ID, brandTechnova.ID, 150000, 4.9, 320, 12, true, at(1), "smartphone", "5g"),
		mk(2, "Nova Smart X10 Lite", catSmartphones.ID, brandTechnova.ID, 120000, 4.8, 210, 5, false, at(5), "smartphone"),
		mk(3, "Orbit P2", catSmartphones.ID, brandVantel.ID, 180000, 4.6, 95, 0, false, at(2), "smartphone"),
		mk(4, "Orbit P2 Pro", catSmartphones.ID, brandVantel.ID, 199000, 4.7, 150, 3, false, at(3), "smartphone", "pro"),
		mk(5, "Orbit Mini", catSmartphones.ID, brandVantel.ID, 90000, 4.1, 40, 8, false, at(4)),
		mk(6, "Helix Book 14", catLaptops.ID, brandTechnova.ID, 450000, 4.5, 60, 4, true, at(6), "laptop"),
		mk(7, "Helix Book Air", catLaptops.ID, brandTechnova.ID, 380000, 4.3, 30, 0, false, at(7), "laptop"),
		mk(8, "Pulse Buds", catAudio.ID, brandVantel.ID, 35000, 4.8, 500, 100, false, at(0), "wireless", "bluetooth"),
		mk(9, "Pulse Max", catAudio.ID, brandVantel.ID, 65000, 4.2, 80, 9, false, at(8), "wireless"),
	}

	// produit soft-deleted : jamais visible
	deleted := mk(10, "Nova Smart Legacy", catSmartphones.ID, brandTechnova.ID, 110000, 3.9, 12, 2, false, at(-30))
	deleted.IsActive = false
	products = append(products, deleted)

	return &memStore{
		products:   products,
		categories: []models.Category{catSmartphones, catLaptops, catAudio},
		brands:     []models.Brand{brandTechnova, brandVantel},
	}
}

func newTestService() (*Service, *memStore) {
	store := seedStore()
	return NewService(store, store, store), store
}

func TestPaginationInvariant(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	filterSets := []SearchFilters{
		{},
		{Category: "smartphones"},
		{Query: "nova"},
		{MinPrice: f64(50000)},
		{InStock: b(true)},
		{Tags: []string{"wireless", "laptop"}},
	}

	for _, filters := range filterSets {
		for _, limit := range []int{1, 2, 3, 12} {
			filters.Limit = limit
			for page := 1; page <= 4; page++ {
				filters.Page = page
				result, err := svc.Search(ctx, filters)
				require.NoError(t, err)

				total := result.Pagination.Total
				wantPages := int((total + int64(limit) - 1) / int64(limit))
				require.Equal(t, wantPages, result.Pagination.Pages)
				require.LessOrEqual(t, len(result.Products), limit)
			}
		}
	}
}

func TestPriceSortOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	asc, err := svc.Search(ctx, SearchFilters{SortBy: SortPriceLow})
	require.NoError(t, err)
	require.NotEmpty(t, asc.Products)
	for i := 1; i < len(asc.Products); i++ {
		require.GreaterOrEqual(t, asc.Products[i].Price, asc.Products[i-1].Price)
	}

	desc, err := svc.Search(ctx, SearchFilters{SortBy: SortPriceHigh})
	require.NoError(t, err)
	for i := 1; i < len(desc.Products); i++ {
		require.LessOrEqual(t, desc.Products[i].Price, desc.Products[i-1].Price)
	}
}

func TestPriceFacetWithinFilterBounds(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{
		MinPrice: f64(100000),
		MaxPrice: f64(400000),
	})
	require.NoError(t, err)
	require.NotZero(t, result.Pagination.Total)

	pr := result.Filters.PriceRange
	require.GreaterOrEqual(t, pr.Min, 100000.0)
	require.LessOrEqual(t, pr.Max, 400000.0)
}

func TestUnknownCategorySlugMatchesNothing(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{Category: "doesnotexist"})
	require.NoError(t, err)
	require.Zero(t, result.Pagination.Total)
	require.Empty(t, result.Products)
	require.Empty(t, result.Filters.Categories)
}

func TestStockFilterTernary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inStock, err := svc.Search(ctx, SearchFilters{InStock: b(true), Limit: 100})
	require.NoError(t, err)
	for _, p := range inStock.Products {
		require.Greater(t, p.StockQuantity, 0)
	}

	// filtre absent : ruptures de stock incluses
	all, err := svc.Search(ctx, SearchFilters{Limit: 100})
	require.NoError(t, err)
	require.Greater(t, all.Pagination.Total, inStock.Pagination.Total)

	outOfStock, err := svc.Search(ctx, SearchFilters{InStock: b(false), Limit: 100})
	require.NoError(t, err)
	require.Equal(t, all.Pagination.Total, inStock.Pagination.Total+outOfStock.Pagination.Total)
}

func TestFeaturedFilterTernary(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	featured, err := svc.Search(ctx, SearchFilters{Featured: b(true), Limit: 100})
	require.NoError(t, err)
	require.Equal(t, int64(2), featured.Pagination.Total)

	notFeatured, err := svc.Search(ctx, SearchFilters{Featured: b(false), Limit: 100})
	require.NoError(t, err)
	require.Equal(t, int64(7), notFeatured.Pagination.Total)
}

func TestTagFilterIsUnionAcrossTags(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{
		Tags:  []string{"wireless", "laptop"},
		Limit: 100,
	})
	require.NoError(t, err)
	// 2 audio "wireless" + 2 laptops "laptop"
	require.Equal(t, int64(4), result.Pagination.Total)
}

func TestSuggestionsOrderAndDedup(t *testing.T) {
	svc, _ := newTestService()

	suggestions, err := svc.Suggestions(context.Background(), "smart")
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	require.LessOrEqual(t, len(suggestions), 8)

	// produits avant catégories, la catégorie "Smartphones" est présente
	require.Contains(t, suggestions, "Nova Smart X10")
	require.Contains(t, suggestions, "Smartphones")
	productIdx, categoryIdx := -1, -1
	for i, s := range suggestions {
		if s == "Nova Smart X10" {
			productIdx = i
		}
		if s == "Smartphones" {
			categoryIdx = i
		}
	}
	require.Less(t, productIdx, categoryIdx)

	// aucune chaîne dupliquée
	seen := map[string]bool{}
	for _, s := range suggestions {
		require.False(t, seen[s], "suggestion dupliquée: %s", s)
		seen[s] = true
	}
}

func TestSearchWithoutQueryHasNoSuggestions(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{})
	require.NoError(t, err)
	require.Empty(t, result.Suggestions)
	require.Equal(t, []int{5, 4, 3, 2, 1}, result.Filters.Ratings)
}

func TestSmartphonePriceWindowScenario(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{
		Category: "smartphones",
		MinPrice: f64(100000),
		MaxPrice: f64(200000),
		Page:     1,
		Limit:    12,
	})
	require.NoError(t, err)

	require.Equal(t, int64(4), result.Pagination.Total)
	require.Equal(t, 1, result.Pagination.Pages)
	require.Len(t, result.Products, 4)
	for _, p := range result.Products {
		require.NotNil(t, p.Category)
		require.Equal(t, "smartphones", p.Category.Slug)
		require.GreaterOrEqual(t, p.Price, 100000.0)
		require.LessOrEqual(t, p.Price, 200000.0)
	}
}

func TestRatingSortScenario(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{
		Category: "smartphones",
		MinPrice: f64(100000),
		SortBy:   SortRating,
	})
	require.NoError(t, err)

	var ratings []float64
	for _, p := range result.Products {
		ratings = append(ratings, p.Rating)
	}
	require.Equal(t, []float64{4.9, 4.8, 4.7, 4.6}, ratings)
}

func TestRelevanceFallbackOrder(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{SortBy: SortRelevance, Limit: 100})
	require.NoError(t, err)
	require.NotEmpty(t, result.Products)

	// featured d'abord, triés par note
	require.Equal(t, "Nova Smart X10", result.Products[0].Name)
	require.Equal(t, "Helix Book 14", result.Products[1].Name)

	// puis les non-featured, notes non croissantes
	rest := result.Products[2:]
	for i := range rest {
		require.False(t, rest[i].Featured)
		if i > 0 {
			require.LessOrEqual(t, rest[i].Rating, rest[i-1].Rating)
		}
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	filters := SearchFilters{Query: "nova", Category: "smartphones", SortBy: SortRating, Limit: 2}

	first, err := svc.Search(ctx, filters)
	require.NoError(t, err)
	second, err := svc.Search(ctx, filters)
	require.NoError(t, err)

	require.Equal(t, first.Pagination, second.Pagination)

	var firstIDs, secondIDs []string
	for _, p := range first.Products {
		firstIDs = append(firstIDs, p.ID.Hex())
	}
	for _, p := range second.Products {
		secondIDs = append(secondIDs, p.ID.Hex())
	}
	require.Equal(t, firstIDs, secondIDs)
}

func TestInactiveProductsNeverReturned(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.Search(context.Background(), SearchFilters{Query: "nova", Limit: 100})
	require.NoError(t, err)
	for _, p := range result.Products {
		require.NotEqual(t, "Nova Smart Legacy", p.Name)
	}
}

func TestStoreFailureIsOpaque(t *testing.T) {
	svc, store := newTestService()
	store.failWith = errors.New("connexion refusée")

	_, err := svc.Search(context.Background(), SearchFilters{Query: "nova"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestSuggestionsFailureIsOpaque(t *testing.T) {
	svc, store := newTestService()
	store.failWith = errors.New("connexion refusée")

	// pas de liste vide fabriquée pendant une panne du store
	suggestions, err := svc.Suggestions(context.Background(), "smart")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnavailable)
	require.Nil(t, suggestions)
}

func TestQuickSearchProjection(t *testing.T) {
	svc, _ := newTestService()

	results, err := svc.QuickSearch(context.Background(), "pulse", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.LessOrEqual(t, len(results), 5)

	for _, r := range results {
		require.NotEmpty(t, r.ID)
		require.NotEmpty(t, r.Name)
		require.NotEmpty(t, r.Slug)
		require.Equal(t, "Audio", r.Category)
		require.Equal(t, "Vantel", r.Brand)
	}
}

func TestTrendingOrder(t *testing.T) {
	svc, _ := newTestService()

	products, err := svc.Trending(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 3)

	// reviewCount desc, rating desc en départage
	require.Equal(t, "Pulse Buds", products[0].Name)
	require.Equal(t, "Nova Smart X10", products[1].Name)
	require.Equal(t, "Nova Smart X10 Lite", products[2].Name)
}

func TestRecentlyViewedSkipsInactive(t *testing.T) {
	svc, _ := newTestService()

	products, err := svc.RecentlyViewed(context.Background(), []string{
		oid(10).Hex(), // soft-deleted
		oid(8).Hex(),
		"not-an-id",
	}, 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Pulse Buds", products[0].Name)
}

func TestFacetCountsMatchBaseQuery(t *testing.T) {
	svc, _ := newTestService()

	// la pagination ne change pas les facettes : même prédicat de base
	page1, err := svc.Search(context.Background(), SearchFilters{InStock: b(true), Limit: 2, Page: 1})
	require.NoError(t, err)
	page3, err := svc.Search(context.Background(), SearchFilters{InStock: b(true), Limit: 2, Page: 3})
	require.NoError(t, err)

	require.Equal(t, page1.Filters.Categories, page3.Filters.Categories)
	require.Equal(t, page1.Filters.Brands, page3.Filters.Brands)

	var sum int64
	for _, facet := range page1.Filters.Categories {
		sum += facet.Count
	}
	require.Equal(t, page1.Pagination.Total, sum)
}
