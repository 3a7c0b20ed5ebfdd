package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID             primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Name           string                 `json:"name" bson:"name"`
	Slug           string                 `json:"slug" bson:"slug"`
	Description    string                 `json:"description" bson:"description"`
	Price          float64                `json:"price" bson:"price"`
	OriginalPrice  *float64               `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Image          string                 `json:"image" bson:"image"`
	Images         []string               `json:"images,omitempty" bson:"images,omitempty"`
	CategoryID     primitive.ObjectID     `json:"-" bson:"category"`
	BrandID        primitive.ObjectID     `json:"-" bson:"brand"`
	Category       *CategoryRef           `json:"category,omitempty" bson:"-"`
	Brand          *BrandRef              `json:"brand,omitempty" bson:"-"`
	InStock        bool                   `json:"inStock" bson:"inStock"`
	StockQuantity  int                    `json:"stockQuantity" bson:"stockQuantity"`
	Featured       bool                   `json:"featured" bson:"featured"`
	Specifications map[string]interface{} `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Rating         float64                `json:"rating" bson:"rating"`
	ReviewCount    int                    `json:"reviewCount" bson:"reviewCount"`
	Tags           []string               `json:"tags,omitempty" bson:"tags,omitempty"`
	SKU            string                 `json:"sku" bson:"sku"`
	Weight         *float64               `json:"weight,omitempty" bson:"weight,omitempty"`
	IsActive       bool                   `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt" bson:"updatedAt"`

	// Renseigné pour un visiteur authentifié sur la page produit, jamais stocké.
	InWishlist *bool `json:"inWishlist,omitempty" bson:"-"`
}

// CategoryRef / BrandRef sont les versions "populate" renvoyées au client :
// uniquement le nom et le slug, jamais le document complet.
type CategoryRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Slug string             `json:"slug" bson:"slug"`
}

type BrandRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Slug string             `json:"slug" bson:"slug"`
}

// SyncStock dérive inStock de stockQuantity. Le flag n'est jamais
// modifiable indépendamment.
func (p *Product) SyncStock() {
	p.InStock = p.StockQuantity > 0
}

// SimplifiedProduct est la projection réduite renvoyée par la recherche rapide
// (autocomplete) : id, nom, slug, prix, image, noms de catégorie et de marque.
type SimplifiedProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category,omitempty"`
	Brand    string  `json:"brand,omitempty"`
}
