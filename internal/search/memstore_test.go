package search

import (
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"velora_back_end/internal/models"
)

// memStore est un store catalogue en mémoire qui rejoue la sémantique de
// filtrage/tri du store de production. Il implémente les trois ports de la
// recherche.
type memStore struct {
	products   []models.Product
	categories []models.Category
	brands     []models.Brand

	failWith error // si non-nil, toutes les lectures échouent
}

func (m *memStore) matches(p models.Product, q Query) bool {
	if q.MatchNone {
		return false
	}
	if !p.IsActive {
		return false
	}
	if q.Text != "" && textScore(p, q.Text) == 0 {
		return false
	}
	if q.CategoryID != "" && p.CategoryID.Hex() != q.CategoryID {
		return false
	}
	if q.BrandID != "" && p.BrandID.Hex() != q.BrandID {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.MinRating != nil && p.Rating < *q.MinRating {
		return false
	}
	if q.InStock != nil && p.InStock != *q.InStock {
		return false
	}
	if q.Featured != nil && p.Featured != *q.Featured {
		return false
	}
	if len(q.Tags) > 0 && !intersects(p.Tags, q.Tags) {
		return false
	}
	return true
}

func intersects(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// textScore simule l'index plein-texte : le nom pèse plus lourd que la
// description et les tags. 0 = pas de correspondance.
func textScore(p models.Product, query string) int {
	q := strings.ToLower(query)
	score := 0
	if strings.Contains(strings.ToLower(p.Name), q) {
		score += 3
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		score += 2
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score++
		}
	}
	return score
}

func (m *memStore) filtered(q Query) []models.Product {
	var out []models.Product
	for _, p := range m.products {
		if m.matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) sortProducts(products []models.Product, key SortKey, q Query) {
	less := func(a, b models.Product) bool { return false }
	switch key {
	case SortPriceLow:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case SortRating:
		less = func(a, b models.Product) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ReviewCount > b.ReviewCount
		}
	case SortNewest:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortPopular:
		less = func(a, b models.Product) bool {
			if a.ReviewCount != b.ReviewCount {
				return a.ReviewCount > b.ReviewCount
			}
			return a.Rating > b.Rating
		}
	case SortRelevance:
		if q.HasText() {
			less = func(a, b models.Product) bool { return textScore(a, q.Text) > textScore(b, q.Text) }
		} else {
			less = func(a, b models.Product) bool {
				if a.Featured != b.Featured {
					return a.Featured
				}
				if a.Rating != b.Rating {
					return a.Rating > b.Rating
				}
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func (m *memStore) populate(p models.Product) models.Product {
	for _, c := range m.categories {
		if c.ID == p.CategoryID {
			p.Category = &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
	}
	for _, b := range m.brands {
		if b.ID == p.BrandID {
			p.Brand = &models.BrandRef{ID: b.ID, Name: b.Name, Slug: b.Slug}
		}
	}
	return p
}

func (m *memStore) FindPage(ctx context.Context, q Query, key SortKey, page Page) ([]models.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	matched := m.filtered(q)
	m.sortProducts(matched, key, q)

	start := page.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Product, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, m.populate(p))
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context, q Query) (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return int64(len(m.filtered(q))), nil
}

func (m *memStore) CategoryFacets(ctx context.Context, q Query) ([]FacetEntry, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	counts := map[primitive.ObjectID]int64{}
	for _, p := range m.filtered(q) {
		counts[p.CategoryID]++
	}
	var facets []FacetEntry
	for _, c := range m.categories {
		if n := counts[c.ID]; n > 0 {
			facets = append(facets, FacetEntry{ID: c.ID.Hex(), Name: c.Name, Slug: c.Slug, Count: n})
		}
	}
	sort.SliceStable(facets, func(i, j int) bool { return facets[i].Count > facets[j].Count })
	return facets, nil
}

func (m *memStore) BrandFacets(ctx context.Context, q Query) ([]FacetEntry, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	counts := map[primitive.ObjectID]int64{}
	for _, p := range m.filtered(q) {
		counts[p.BrandID]++
	}
	var facets []FacetEntry
	for _, b := range m.brands {
		if n := counts[b.ID]; n > 0 {
			facets = append(facets, FacetEntry{ID: b.ID.Hex(), Name: b.Name, Slug: b.Slug, Count: n})
		}
	}
	sort.SliceStable(facets, func(i, j int) bool { return facets[i].Count > facets[j].Count })
	return facets, nil
}

func (m *memStore) PriceRange(ctx context.Context, q Query) (PriceRange, error) {
	if m.failWith != nil {
		return PriceRange{}, m.failWith
	}
	var pr PriceRange
	for i, p := range m.filtered(q) {
		if i == 0 {
			pr.Min, pr.Max = p.Price, p.Price
			continue
		}
		if p.Price < pr.Min {
			pr.Min = p.Price
		}
		if p.Price > pr.Max {
			pr.Max = p.Price
		}
	}
	return pr, nil
}

func (m *memStore) FindByIDs(ctx context.Context, ids []string, limit int) ([]models.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Product
	for _, id := range ids {
		for _, p := range m.products {
			if p.IsActive && p.ID.Hex() == id {
				out = append(out, m.populate(p))
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	active := m.filtered(Query{})
	m.sortProducts(active, SortPopular, Query{})
	if len(active) > limit {
		active = active[:limit]
	}
	out := make([]models.Product, 0, len(active))
	for _, p := range active {
		out = append(out, m.populate(p))
	}
	return out, nil
}

// --- CatalogResolver ---

func (m *memStore) CategoryBySlug(ctx context.Context, slug string) (*models.CategoryRef, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, c := range m.categories {
		if c.IsActive && c.Slug == slug {
			return &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}, nil
		}
	}
	return nil, nil
}

func (m *memStore) BrandBySlug(ctx context.Context, slug string) (*models.BrandRef, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, b := range m.brands {
		if b.IsActive && b.Slug == slug {
			return &models.BrandRef{ID: b.ID, Name: b.Name, Slug: b.Slug}, nil
		}
	}
	return nil, nil
}

func (m *memStore) CategoriesMatching(ctx context.Context, q string, limit int) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var names []string
	for _, c := range m.categories {
		if c.IsActive && strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			names = append(names, c.Name)
			if len(names) == limit {
				break
			}
		}
	}
	return names, nil
}

func (m *memStore) BrandsMatching(ctx context.Context, q string, limit int) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var names []string
	for _, b := range m.brands {
		if b.IsActive && strings.Contains(strings.ToLower(b.Name), strings.ToLower(q)) {
			names = append(names, b.Name)
			if len(names) == limit {
				break
			}
		}
	}
	return names, nil
}

// --- SuggestionIndex ---

func (m *memStore) ProductNames(ctx context.Context, q string, limit int) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	matched := m.filtered(Query{Text: q})
	sort.SliceStable(matched, func(i, j int) bool {
		return textScore(matched[i], q) > textScore(matched[j], q)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	names := make([]string, 0, len(matched))
	for _, p := range matched {
		names = append(names, p.Name)
	}
	return names, nil
}
