package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/search"
)

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }

func TestBuildFilterAlwaysRestrictsToActive(t *testing.T) {
	filter := buildFilter(search.Query{})
	require.Equal(t, bson.M{"isActive": true}, filter)
}

func TestBuildFilterMatchNone(t *testing.T) {
	filter := buildFilter(search.Query{MatchNone: true, Text: "ignored"})
	require.Equal(t, bson.M{"_id": bson.M{"$exists": false}}, filter)
}

func TestBuildFilterText(t *testing.T) {
	filter := buildFilter(search.Query{Text: "nova"})
	require.Equal(t, bson.M{"$search": "nova"}, filter["$text"])
}

func TestBuildFilterResolvedReferences(t *testing.T) {
	catID := primitive.NewObjectID()
	brandID := primitive.NewObjectID()

	filter := buildFilter(search.Query{CategoryID: catID.Hex(), BrandID: brandID.Hex()})
	require.Equal(t, catID, filter["category"])
	require.Equal(t, brandID, filter["brand"])
}

func TestBuildFilterPriceInterval(t *testing.T) {
	// intervalle fermé, les deux bornes présentes
	filter := buildFilter(search.Query{MinPrice: f64(100), MaxPrice: f64(200)})
	require.Equal(t, bson.M{"$gte": 100.0, "$lte": 200.0}, filter["price"])

	// borne haute ouverte
	filter = buildFilter(search.Query{MinPrice: f64(100)})
	require.Equal(t, bson.M{"$gte": 100.0}, filter["price"])

	// aucune borne : pas de clause prix
	filter = buildFilter(search.Query{})
	require.NotContains(t, filter, "price")
}

func TestBuildFilterTernaryBooleans(t *testing.T) {
	filter := buildFilter(search.Query{})
	require.NotContains(t, filter, "inStock")
	require.NotContains(t, filter, "featured")

	filter = buildFilter(search.Query{InStock: b(false), Featured: b(true)})
	require.Equal(t, false, filter["inStock"])
	require.Equal(t, true, filter["featured"])
}

func TestBuildFilterRatingLowerBound(t *testing.T) {
	filter := buildFilter(search.Query{MinRating: f64(4)})
	require.Equal(t, bson.M{"$gte": 4.0}, filter["rating"])
}

func TestBuildFilterTagsIn(t *testing.T) {
	filter := buildFilter(search.Query{Tags: []string{"5g", "pro"}})
	require.Equal(t, bson.M{"$in": []string{"5g", "pro"}}, filter["tags"])
}

func TestBuildSortKeys(t *testing.T) {
	cases := []struct {
		key  search.SortKey
		q    search.Query
		want bson.D
	}{
		{search.SortPriceLow, search.Query{}, bson.D{{Key: "price", Value: 1}}},
		{search.SortPriceHigh, search.Query{}, bson.D{{Key: "price", Value: -1}}},
		{search.SortRating, search.Query{}, bson.D{{Key: "rating", Value: -1}, {Key: "reviewCount", Value: -1}}},
		{search.SortNewest, search.Query{}, bson.D{{Key: "createdAt", Value: -1}}},
		{search.SortPopular, search.Query{}, bson.D{{Key: "reviewCount", Value: -1}, {Key: "rating", Value: -1}}},
		{search.SortRelevance, search.Query{Text: "nova"}, bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}},
		{search.SortRelevance, search.Query{}, bson.D{{Key: "featured", Value: -1}, {Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, buildSort(tc.key, tc.q), "clé %s", tc.key)
	}
}

func TestNameFilterEscapesUserInput(t *testing.T) {
	filter := nameFilter("c++ (pro).edition*")

	rx, ok := filter["name"].(bson.M)["$regex"].(primitive.Regex)
	require.True(t, ok)
	require.Equal(t, "i", rx.Options)
	require.Equal(t, regexp.QuoteMeta("c++ (pro).edition*"), rx.Pattern)

	// le motif échappé reste une regex valide
	re, err := regexp.Compile("(?i)" + rx.Pattern)
	require.NoError(t, err)
	require.True(t, re.MatchString("C++ (Pro).Edition* Deluxe"))
	require.False(t, re.MatchString("cpp pro edition"))

	require.Equal(t, true, filter["isActive"])
}

func TestFacetPipelineShape(t *testing.T) {
	pipeline := facetPipeline(search.Query{Text: "nova"}, "category", "categories")
	require.Len(t, pipeline, 6)

	// le $match de tête porte le même prédicat que la requête principale,
	// indépendamment de la pagination
	match := pipeline[0][0]
	require.Equal(t, "$match", match.Key)
	require.Equal(t, buildFilter(search.Query{Text: "nova"}), match.Value)

	sortStage := pipeline[5][0]
	require.Equal(t, "$sort", sortStage.Key)
	require.Equal(t, bson.M{"count": -1}, sortStage.Value)
}
