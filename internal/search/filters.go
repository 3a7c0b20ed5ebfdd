package search

// Clés de tri supportées par la recherche catalogue.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchFilters est le contrat de requête côté client. Tous les champs sont
// optionnels : un champ absent signifie "aucune contrainte sur cette dimension".
// Les booléens sont des pointeurs — nil ≠ false (sémantique ternaire).
type SearchFilters struct {
	Query    string   `json:"query,omitempty"`
	Category string   `json:"category,omitempty"` // slug
	Brand    string   `json:"brand,omitempty"`    // slug
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Rating   *float64 `json:"rating,omitempty"` // borne basse inclusive
	InStock  *bool    `json:"inStock,omitempty"`
	Featured *bool    `json:"featured,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	SortBy   SortKey  `json:"sortBy,omitempty"`
	Page     int      `json:"page,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// Normalize applique les défauts : page 1-indexée, limite bornée à 1..100,
// tri "relevance" si absent ou inconnu.
func (f *SearchFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	switch f.SortBy {
	case SortRelevance, SortPriceLow, SortPriceHigh, SortRating, SortNewest, SortPopular:
	default:
		f.SortBy = SortRelevance
	}
}
