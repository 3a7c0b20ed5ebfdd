package models

import (
	"time"

	"github.com/gocql/gocql"
)

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderSummary est la ligne dénormalisée de orders_by_user.
type OrderSummary struct {
	ID        gocql.UUID `json:"id"`
	Total     float64    `json:"total"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Order struct {
	ID              gocql.UUID      `json:"id"`
	UserID          string          `json:"userId"`
	Email           string          `json:"email"`
	Items           []OrderItem     `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	Total           float64         `json:"total"`
	Status          string          `json:"status"` // pending, paid, shipped, delivered, cancelled
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	Shipping        ShippingAddress `json:"shipping"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
