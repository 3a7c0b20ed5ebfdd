package models

import "time"

type Wishlist struct {
	UserID    string    `json:"userId" bson:"userId"`
	Products  []string  `json:"products" bson:"products"` // ids produits (hex)
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// WishlistView est la wishlist résolue avec le détail des produits.
type WishlistView struct {
	UserID string    `json:"userId"`
	Items  []Product `json:"items"`
}
