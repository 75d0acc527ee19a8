// Package catalog reads and administers the backend-owned product
// catalog. The Reader is the single source of truth for product
// name/price/description inside the process; every other component
// that needs product data goes through it.
package catalog

import (
	"context"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/models"
)

type Reader struct {
	backend backend.Client
	cache   *cache.Store
}

func NewReader(b backend.Client, c *cache.Store) *Reader {
	return &Reader{backend: b, cache: c}
}

// ListProducts serves the full catalog through the query cache.
// Entries carry no TTL; only an admin mutation invalidates them.
func (r *Reader) ListProducts(ctx context.Context) ([]models.Product, error) {
	if v, ok := r.cache.Get(cache.KeyProducts); ok {
		return v.([]models.Product), nil
	}
	products, err := r.backend.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(cache.KeyProducts, products)
	return products, nil
}

func (r *Reader) GetProduct(ctx context.Context, id string) (models.Product, error) {
	key := cache.KeyProduct(id)
	if v, ok := r.cache.Get(key); ok {
		return v.(models.Product), nil
	}
	product, err := r.backend.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	r.cache.Set(key, product)
	return product, nil
}

// SearchProducts is a pass-through; search results are too
// query-shaped to be worth keying in the cache.
func (r *Reader) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	return r.backend.SearchProducts(ctx, query)
}
