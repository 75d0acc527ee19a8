// Package backend is the narrow contract between the storefront core
// and the authoritative store. The backend owns products, carts,
// orders and roles; everything here is a remote call and every
// returned value is a projection the caller must not treat as a
// second source of truth.
package backend

import (
	"context"

	"github.com/openmerch/storefront/internal/models"
)

type Client interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)

	AddProduct(ctx context.Context, name string, price int64, description, imageRef string) (string, error)
	UpdateProduct(ctx context.Context, id, name string, price int64, description, imageRef string) error
	DeleteProduct(ctx context.Context, id string) error

	GetCart(ctx context.Context) ([]models.CartLine, error)
	AddToCart(ctx context.Context, productID string, quantity int64) error
	RemoveFromCart(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error

	// Checkout sends only the contact fields; the backend reads the
	// authoritative cart server-side at commit time.
	Checkout(ctx context.Context, customerName, customerEmail, shippingAddress string) (string, error)

	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListMyOrders(ctx context.Context) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)

	GetCallerRole(ctx context.Context) (models.Role, error)
	// GetCallerProfile returns (nil, nil) when the caller has no
	// profile yet; a user may exist without one.
	GetCallerProfile(ctx context.Context) (*models.UserProfile, error)
	SaveCallerProfile(ctx context.Context, profile models.UserProfile) error
}
