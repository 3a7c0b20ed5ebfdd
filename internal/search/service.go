package search

import (
	"context"
	"errors"
	"fmt"

	"velora_back_end/internal/models"
)

// ErrUnavailable est l'unique erreur exposée par la recherche : une panne du
// store aval remonte telle quelle, sans résultat partiel.
var ErrUnavailable = errors.New("recherche indisponible")

// Page décrit la fenêtre demandée (offset déjà calculé, 0-indexé).
type Page struct {
	Offset int
	Limit  int
}

// FacetEntry est une entrée de facette : une valeur de dimension et le nombre
// de produits correspondants dans l'ensemble filtré courant.
type FacetEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type Facets struct {
	Categories []FacetEntry `json:"categories"`
	Brands     []FacetEntry `json:"brands"`
	PriceRange PriceRange   `json:"priceRange"`
	Ratings    []int        `json:"ratings"`
}

type SearchResult struct {
	Products    []models.Product `json:"products"`
	Pagination  Pagination       `json:"pagination"`
	Filters     Facets           `json:"filters"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// ProductStore est le port de lecture produit. La recherche ne dépend jamais
// d'un client de base concret : l'adaptateur Mongo l'implémente en production,
// un fake en mémoire dans les tests.
type ProductStore interface {
	// FindPage renvoie une page de produits (catégorie et marque résolues)
	// pour le prédicat et le tri donnés.
	FindPage(ctx context.Context, q Query, sort SortKey, page Page) ([]models.Product, error)
	// Count compte l'ensemble filtré complet, indépendamment de la pagination.
	Count(ctx context.Context, q Query) (int64, error)
	// CategoryFacets / BrandFacets groupent l'ensemble filtré complet par
	// dimension. Les facettes ne sont PAS cross-filtrées : la facette
	// catégories inclut le filtre catégorie courant (simplification assumée).
	CategoryFacets(ctx context.Context, q Query) ([]FacetEntry, error)
	BrandFacets(ctx context.Context, q Query) ([]FacetEntry, error)
	// PriceRange renvoie le min/max observé sur l'ensemble filtré, pas sur le
	// catalogue entier.
	PriceRange(ctx context.Context, q Query) (PriceRange, error)
	FindByIDs(ctx context.Context, ids []string, limit int) ([]models.Product, error)
	// Trending : reviewCount desc puis rating desc, produits actifs seulement.
	Trending(ctx context.Context, limit int) ([]models.Product, error)
}

// CatalogResolver résout les slugs vers les entités de référence et sert les
// correspondances par sous-chaîne pour les suggestions.
type CatalogResolver interface {
	// CategoryBySlug renvoie (nil, nil) si le slug ne résout pas — ce n'est
	// pas une erreur, le filtre devient alors MatchNone.
	CategoryBySlug(ctx context.Context, slug string) (*models.CategoryRef, error)
	BrandBySlug(ctx context.Context, slug string) (*models.BrandRef, error)
	CategoriesMatching(ctx context.Context, q string, limit int) ([]string, error)
	BrandsMatching(ctx context.Context, q string, limit int) ([]string, error)
}

// SuggestionIndex est l'index textuel (Elasticsearch) qui renvoie les noms de
// produits correspondant à une requête libre, classés par score.
type SuggestionIndex interface {
	ProductNames(ctx context.Context, q string, limit int) ([]string, error)
}

type Service struct {
	store   ProductStore
	catalog CatalogResolver
	index   SuggestionIndex
}

func NewService(store ProductStore, catalog CatalogResolver, index SuggestionIndex) *Service {
	return &Service{store: store, catalog: catalog, index: index}
}

// buildQuery traduit les filtres en prédicat exécutable. Un slug introuvable
// donne un prédicat MatchNone plutôt qu'une erreur.
func (s *Service) buildQuery(ctx context.Context, f SearchFilters) (Query, error) {
	q := Query{
		Text:      f.Query,
		MinPrice:  f.MinPrice,
		MaxPrice:  f.MaxPrice,
		MinRating: f.Rating,
		InStock:   f.InStock,
		Featured:  f.Featured,
		Tags:      f.Tags,
	}

	if f.Category != "" {
		ref, err := s.catalog.CategoryBySlug(ctx, f.Category)
		if err != nil {
			return q, err
		}
		if ref == nil {
			q.MatchNone = true
		} else {
			q.CategoryID = ref.ID.Hex()
		}
	}

	if f.Brand != "" {
		ref, err := s.catalog.BrandBySlug(ctx, f.Brand)
		if err != nil {
			return q, err
		}
		if ref == nil {
			q.MatchNone = true
		} else {
			q.BrandID = ref.ID.Hex()
		}
	}

	return q, nil
}

// Search exécute la recherche complète : page de produits, total, facettes et
// suggestions, tous calculés sur le même prédicat filtré.
func (s *Service) Search(ctx context.Context, f SearchFilters) (*SearchResult, error) {
	f.Normalize()

	q, err := s.buildQuery(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	page := Page{Offset: (f.Page - 1) * f.Limit, Limit: f.Limit}

	products, err := s.store.FindPage(ctx, q, f.SortBy, page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	total, err := s.store.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	categories, err := s.store.CategoryFacets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	brands, err := s.store.BrandFacets(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	priceRange, err := s.store.PriceRange(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var suggestions []string
	if f.Query != "" {
		suggestions, err = s.Suggestions(ctx, f.Query)
		if err != nil {
			return nil, err
		}
	}

	if products == nil {
		products = []models.Product{}
	}

	return &SearchResult{
		Products: products,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		},
		Filters: Facets{
			Categories: categories,
			Brands:     brands,
			PriceRange: priceRange,
			Ratings:    []int{5, 4, 3, 2, 1},
		},
		Suggestions: suggestions,
	}, nil
}

const maxSuggestions = 8

// Suggestions renvoie jusqu'à 8 chaînes dédupliquées : 5 noms de produits
// (par score textuel), puis 3 noms de catégories et 3 noms de marques
// correspondant par sous-chaîne. L'ordre produits → catégories → marques est
// préservé, la première occurrence gagne. Une panne d'une des sources remonte
// en ErrUnavailable : pas de liste partielle fabriquée.
func (s *Service) Suggestions(ctx context.Context, query string) ([]string, error) {
	productNames, err := s.index.ProductNames(ctx, query, 5)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	categoryNames, err := s.catalog.CategoriesMatching(ctx, query, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	brandNames, err := s.catalog.BrandsMatching(ctx, query, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	seen := make(map[string]bool)
	suggestions := make([]string, 0, maxSuggestions)
	for _, group := range [][]string{productNames, categoryNames, brandNames} {
		for _, name := range group {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			suggestions = append(suggestions, name)
			if len(suggestions) == maxSuggestions {
				return suggestions, nil
			}
		}
	}
	return suggestions, nil
}

// QuickSearch est la variante autocomplete : même requête, tri pertinence,
// petite limite, projection minimale.
func (s *Service) QuickSearch(ctx context.Context, query string, limit int) ([]models.SimplifiedProduct, error) {
	if limit < 1 || limit > MaxLimit {
		limit = 5
	}

	result, err := s.Search(ctx, SearchFilters{
		Query:  query,
		SortBy: SortRelevance,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	quick := make([]models.SimplifiedProduct, 0, len(result.Products))
	for _, p := range result.Products {
		sp := models.SimplifiedProduct{
			ID:    p.ID.Hex(),
			Name:  p.Name,
			Slug:  p.Slug,
			Price: p.Price,
			Image: p.Image,
		}
		if p.Category != nil {
			sp.Category = p.Category.Name
		}
		if p.Brand != nil {
			sp.Brand = p.Brand.Name
		}
		quick = append(quick, sp)
	}
	return quick, nil
}

// Trending renvoie la vue "popularité" fixe du catalogue, indépendante de
// tout filtre et non personnalisée.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 || limit > MaxLimit {
		limit = 10
	}
	products, err := s.store.Trending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// RecentlyViewed résout une liste d'ids (historique côté client) en produits
// actifs. Les ids inconnus ou inactifs sont simplement absents du résultat.
func (s *Service) RecentlyViewed(ctx context.Context, ids []string, limit int) ([]models.Product, error) {
	if limit < 1 || limit > MaxLimit {
		limit = 10
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	products, err := s.store.FindByIDs(ctx, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// PopularSearchTerms renvoie les termes les plus recherchés. En attendant une
// collection d'analytics dédiée, la liste est fixe.
func PopularSearchTerms(limit int) []string {
	terms := []string{
		"iPhone", "Samsung", "MacBook", "laptop", "smartphone",
		"gaming", "wireless", "bluetooth", "camera", "storage",
	}
	if limit < 1 || limit > len(terms) {
		limit = len(terms)
	}
	return terms[:limit]
}
