package cache

import (
	"context"
	"encoding/json"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const (
	CategoriesCacheTTL = 30 * time.Minute
	BrandsCacheTTL     = 30 * time.Minute
)

const (
	categoriesKey = "catalog:categories"
	brandsKey     = "catalog:brands"
)

// GetCategories récupère la liste des catégories actives depuis Redis.
// Retourne nil sans erreur en cas de cache miss.
func GetCategories(ctx context.Context) []models.Category {
	data, err := database.Redis.Get(ctx, categoriesKey).Result()
	if err != nil {
		return nil
	}

	var categories []models.Category
	if json.Unmarshal([]byte(data), &categories) != nil {
		return nil
	}
	return categories
}

// SetCategories met en cache la liste des catégories actives
func SetCategories(ctx context.Context, categories []models.Category) {
	data, err := json.Marshal(categories)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, categoriesKey, data, CategoriesCacheTTL)
}

// GetBrands récupère la liste des marques actives depuis Redis
func GetBrands(ctx context.Context) []models.Brand {
	data, err := database.Redis.Get(ctx, brandsKey).Result()
	if err != nil {
		return nil
	}

	var brands []models.Brand
	if json.Unmarshal([]byte(data), &brands) != nil {
		return nil
	}
	return brands
}

// SetBrands met en cache la liste des marques actives
func SetBrands(ctx context.Context, brands []models.Brand) {
	data, err := json.Marshal(brands)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, brandsKey, data, BrandsCacheTTL)
}

// InvalidateCatalogCache vide les caches catégories et marques après une
// écriture sur le catalogue
func InvalidateCatalogCache(ctx context.Context) {
	database.Redis.Del(ctx, categoriesKey, brandsKey)
}
