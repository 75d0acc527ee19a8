// Package shopbackend is the authoritative store the client core
// talks to: the sole writer of products, carts and orders. It runs as
// its own server (cmd/shopbackend) for local development and is
// mounted in-process by the integration tests.
package shopbackend

import "time"

type User struct {
	ID           string `gorm:"primaryKey"              json:"id"`
	Username     string `gorm:"uniqueIndex;not null"    json:"username"`
	PasswordHash string `gorm:"not null"                json:"-"`
	Role         string `gorm:"not null"                json:"role"`
}

type UserProfile struct {
	UserID string `gorm:"primaryKey" json:"user_id"`
	Name   string `gorm:"not null"   json:"name"`
}

type Product struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null"   json:"name"`
	Description string `json:"description"`
	Price       int64  `gorm:"not null"   json:"price"`
	ImageRef    string `json:"image_ref"`
}

// CartItem holds at most one row per (user, product); AddToCart
// replaces the quantity rather than appending a line.
type CartItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"                  json:"id"`
	UserID    string `gorm:"uniqueIndex:idx_user_product;not null"     json:"user_id"`
	ProductID string `gorm:"uniqueIndex:idx_user_product;not null"     json:"product_id"`
	Quantity  int64  `gorm:"not null;check:quantity>0"                 json:"quantity"`
}

// Order rows are frozen at checkout: unit prices and total never
// change after creation, whatever happens to the products.
type Order struct {
	ID              string      `gorm:"primaryKey"      json:"id"`
	UserID          string      `gorm:"index;not null"  json:"user_id"`
	CustomerName    string      `gorm:"not null"        json:"customer_name"`
	CustomerEmail   string      `gorm:"not null"        json:"customer_email"`
	ShippingAddress string      `gorm:"not null"        json:"shipping_address"`
	Total           int64       `gorm:"not null"        json:"total"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   string `gorm:"index;not null"           json:"-"`
	ProductID string `gorm:"not null"                 json:"product_id"`
	Quantity  int64  `gorm:"not null"                 json:"quantity"`
	UnitPrice int64  `gorm:"not null"                 json:"unit_price"`
}
