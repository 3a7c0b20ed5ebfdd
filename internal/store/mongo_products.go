package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/models"
	"velora_back_end/internal/search"
)

// buildFilter traduit le prédicat de recherche en filtre bson. Le prédicat
// de base restreint toujours aux produits actifs.
func buildFilter(q search.Query) bson.M {
	if q.MatchNone {
		// slug introuvable : prédicat qui ne matche aucun document
		return bson.M{"_id": bson.M{"$exists": false}}
	}

	filter := bson.M{"isActive": true}

	if q.Text != "" {
		filter["$text"] = bson.M{"$search": q.Text}
	}
	if q.CategoryID != "" {
		if id, err := primitive.ObjectIDFromHex(q.CategoryID); err == nil {
			filter["category"] = id
		}
	}
	if q.BrandID != "" {
		if id, err := primitive.ObjectIDFromHex(q.BrandID); err == nil {
			filter["brand"] = id
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if q.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *q.MinRating}
	}
	if q.InStock != nil {
		filter["inStock"] = *q.InStock
	}
	if q.Featured != nil {
		filter["featured"] = *q.Featured
	}
	if len(q.Tags) > 0 {
		filter["tags"] = bson.M{"$in": q.Tags}
	}

	return filter
}

// buildSort traduit la clé de tri. La pertinence utilise le score textuel de
// l'index plein-texte quand une requête est présente, sinon le tri fixe
// featured / rating / createdAt.
func buildSort(key search.SortKey, q search.Query) bson.D {
	switch key {
	case search.SortPriceLow:
		return bson.D{{Key: "price", Value: 1}}
	case search.SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}}
	case search.SortRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "reviewCount", Value: -1}}
	case search.SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}}
	case search.SortPopular:
		return bson.D{{Key: "reviewCount", Value: -1}, {Key: "rating", Value: -1}}
	default:
		if q.HasText() {
			return bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}
		}
		return bson.D{{Key: "featured", Value: -1}, {Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
	}
}

func (m *MongoCatalog) FindPage(ctx context.Context, q search.Query, sort search.SortKey, page search.Page) ([]models.Product, error) {
	opts := options.Find().
		SetSort(buildSort(sort, q)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	if sort == search.SortRelevance && q.HasText() {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := m.products.Find(ctx, buildFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	if err := m.populateRefs(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (m *MongoCatalog) Count(ctx context.Context, q search.Query) (int64, error) {
	return m.products.CountDocuments(ctx, buildFilter(q))
}

// facetPipeline groupe l'ensemble filtré complet par dimension, rejoint le
// nom et le slug, et trie par effectif décroissant. Même pipeline que pour
// les marques, seuls le champ et la collection changent.
func facetPipeline(q search.Query, field, from string) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: buildFilter(q)}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         from,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           field,
		}}},
		bson.D{{Key: "$unwind", Value: "$" + field}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":   "$" + field + "._id",
			"name":  "$" + field + ".name",
			"slug":  "$" + field + ".slug",
			"count": 1,
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
}

type facetDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Slug  string             `bson:"slug"`
	Count int64              `bson:"count"`
}

func (m *MongoCatalog) runFacets(ctx context.Context, pipeline mongo.Pipeline) ([]search.FacetEntry, error) {
	cursor, err := m.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []facetDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	facets := make([]search.FacetEntry, 0, len(docs))
	for _, d := range docs {
		facets = append(facets, search.FacetEntry{
			ID:    d.ID.Hex(),
			Name:  d.Name,
			Slug:  d.Slug,
			Count: d.Count,
		})
	}
	return facets, nil
}

func (m *MongoCatalog) CategoryFacets(ctx context.Context, q search.Query) ([]search.FacetEntry, error) {
	return m.runFacets(ctx, facetPipeline(q, "category", "categories"))
}

func (m *MongoCatalog) BrandFacets(ctx context.Context, q search.Query) ([]search.FacetEntry, error) {
	return m.runFacets(ctx, facetPipeline(q, "brand", "brands"))
}

// PriceRange renvoie le min/max observé sur l'ensemble filtré, pas sur le
// catalogue entier.
func (m *MongoCatalog) PriceRange(ctx context.Context, q search.Query) (search.PriceRange, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: buildFilter(q)}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": nil,
			"min": bson.M{"$min": "$price"},
			"max": bson.M{"$max": "$price"},
		}}},
	}

	cursor, err := m.products.Aggregate(ctx, pipeline)
	if err != nil {
		return search.PriceRange{}, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Min float64 `bson:"min"`
		Max float64 `bson:"max"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return search.PriceRange{}, err
	}
	if len(docs) == 0 {
		return search.PriceRange{}, nil
	}
	return search.PriceRange{Min: docs[0].Min, Max: docs[0].Max}, nil
}

func (m *MongoCatalog) FindByIDs(ctx context.Context, ids []string, limit int) ([]models.Product, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return nil, nil
	}

	cursor, err := m.products.Find(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}, "isActive": true},
		options.Find().SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	if err := m.populateRefs(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (m *MongoCatalog) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	cursor, err := m.products.Find(ctx,
		bson.M{"isActive": true},
		options.Find().
			SetSort(bson.D{{Key: "reviewCount", Value: -1}, {Key: "rating", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	if err := m.populateRefs(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// populateRefs résout les références catégorie/marque d'une page de produits
// en deux lectures $in, à la manière du populate Mongoose.
func (m *MongoCatalog) populateRefs(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	catIDs := make([]primitive.ObjectID, 0, len(products))
	brandIDs := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		catIDs = append(catIDs, p.CategoryID)
		brandIDs = append(brandIDs, p.BrandID)
	}

	catRefs, err := m.fetchRefs(ctx, m.categories, catIDs)
	if err != nil {
		return err
	}
	brandRefs, err := m.fetchRefs(ctx, m.brands, brandIDs)
	if err != nil {
		return err
	}

	for i := range products {
		if ref, ok := catRefs[products[i].CategoryID]; ok {
			products[i].Category = &models.CategoryRef{ID: ref.ID, Name: ref.Name, Slug: ref.Slug}
		}
		if ref, ok := brandRefs[products[i].BrandID]; ok {
			products[i].Brand = &models.BrandRef{ID: ref.ID, Name: ref.Name, Slug: ref.Slug}
		}
	}
	return nil
}

type refDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

func (m *MongoCatalog) fetchRefs(ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]refDoc, error) {
	cursor, err := coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "slug": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	refs := make(map[primitive.ObjectID]refDoc)
	for cursor.Next(ctx) {
		var doc refDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		refs[doc.ID] = doc
	}
	return refs, cursor.Err()
}
