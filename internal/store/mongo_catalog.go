package store

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"velora_back_end/internal/models"
)

// MongoCatalog implémente les ports de lecture de la recherche au-dessus des
// collections products / categories / brands.
type MongoCatalog struct {
	products   *mongo.Collection
	categories *mongo.Collection
	brands     *mongo.Collection
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
		brands:     db.Collection("brands"),
	}
}

// CategoryBySlug résout un slug de catégorie. Un slug introuvable renvoie
// (nil, nil) : le service en fait un prédicat vide, pas une erreur.
func (m *MongoCatalog) CategoryBySlug(ctx context.Context, slug string) (*models.CategoryRef, error) {
	var ref models.CategoryRef
	err := m.categories.FindOne(ctx,
		bson.M{"slug": slug, "isActive": true},
		options.FindOne().SetProjection(bson.M{"name": 1, "slug": 1}),
	).Decode(&ref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (m *MongoCatalog) BrandBySlug(ctx context.Context, slug string) (*models.BrandRef, error) {
	var ref models.BrandRef
	err := m.brands.FindOne(ctx,
		bson.M{"slug": slug, "isActive": true},
		options.FindOne().SetProjection(bson.M{"name": 1, "slug": 1}),
	).Decode(&ref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CategoriesMatching renvoie les noms de catégories actives contenant la
// sous-chaîne, insensible à la casse.
func (m *MongoCatalog) CategoriesMatching(ctx context.Context, q string, limit int) ([]string, error) {
	return m.namesMatching(ctx, m.categories, q, limit)
}

func (m *MongoCatalog) BrandsMatching(ctx context.Context, q string, limit int) ([]string, error) {
	return m.namesMatching(ctx, m.brands, q, limit)
}

// nameFilter construit le prédicat de correspondance par sous-chaîne. La
// saisie utilisateur est échappée : ses métacaractères n'atteignent jamais
// le $regex.
func nameFilter(q string) bson.M {
	return bson.M{
		"name":     bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}},
		"isActive": true,
	}
}

func (m *MongoCatalog) namesMatching(ctx context.Context, coll *mongo.Collection, q string, limit int) ([]string, error) {
	cursor, err := coll.Find(ctx,
		nameFilter(q),
		options.Find().SetLimit(int64(limit)).SetProjection(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cursor.Err()
}
