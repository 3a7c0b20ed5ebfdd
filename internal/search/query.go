package search

// Query est le prédicat résolu exécuté par le store : les slugs de catégorie
// et de marque ont déjà été traduits en identifiants internes. Le prédicat de
// base restreint toujours aux produits actifs (isActive) — les stores doivent
// l'appliquer inconditionnellement.
type Query struct {
	Text       string
	CategoryID string // ObjectID hex, "" = pas de contrainte
	BrandID    string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
	InStock    *bool
	Featured   *bool
	Tags       []string // intersection : OR entre les tags demandés

	// MatchNone est levé quand un slug demandé ne résout vers aucune entité :
	// "category=doesnotexist" doit renvoyer l'ensemble vide, pas ignorer le
	// filtre.
	MatchNone bool
}

// HasText indique si un tri par pertinence doit utiliser le score textuel.
// Sans requête libre, la pertinence retombe sur le tri fixe
// featured desc, rating desc, createdAt desc.
func (q Query) HasText() bool {
	return q.Text != ""
}
