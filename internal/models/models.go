package models

import (
	"time"
)

// Product as the backend owns it. Price is always in minor currency
// units (cents); nothing in this module ever holds a float amount.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageRef    string `json:"image_ref"`
}

// CartLine is the authoritative cart entry: one line per product,
// quantity always >= 1.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// EnrichedCartLine is a CartLine joined with the current catalog
// snapshot at read time. It is never persisted; every cart read
// recomputes it. Missing reports that the referenced product could
// not be resolved and Price/Name hold the placeholder values.
type EnrichedCartLine struct {
	CartLine
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Missing bool   `json:"missing"`
}

// UnknownProductName is the sentinel name shown for a cart line whose
// product no longer resolves in the catalog.
const UnknownProductName = "Unknown Product"

// OrderItem carries the unit price frozen at checkout time.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order is immutable once the backend has created it: items and total
// are frozen at checkout time and never re-resolved against the catalog.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items"`
	Total           int64       `json:"total"`
	CreatedAt       time.Time   `json:"created_at"`
}

type UserProfile struct {
	Name string `json:"name"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)
