// Package order reads previously created orders. Orders are
// immutable, but listings change when checkouts land, so everything
// here sits behind a short-lived query cache instead of the
// invalidate-only catalog cache.
package order

import (
	"context"
	"time"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

const queryTTL = 30 * time.Second

type Lookup struct {
	backend backend.Client
	cache   *cache.Store
}

func NewLookup(b backend.Client, c *cache.Store) *Lookup {
	return &Lookup{backend: b, cache: c}
}

// GetOrder fetches one order. Unknown ids and other users' orders
// both come back as NotFound; the backend does not distinguish.
func (l *Lookup) GetOrder(ctx context.Context, id string) (models.Order, error) {
	key := cache.KeyOrder(session.SubjectFromToken(session.Token(ctx)), id)
	if v, ok := l.cache.Get(key); ok {
		return v.(models.Order), nil
	}
	o, err := l.backend.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	l.cache.SetTTL(key, o, queryTTL)
	return o, nil
}

func (l *Lookup) ListMyOrders(ctx context.Context) ([]models.Order, error) {
	userID := session.SubjectFromToken(session.Token(ctx))
	if userID == "" {
		return nil, models.ErrNotAuthenticated
	}
	key := cache.KeyMyOrders(userID)
	if v, ok := l.cache.Get(key); ok {
		return v.([]models.Order), nil
	}
	orders, err := l.backend.ListMyOrders(ctx)
	if err != nil {
		return nil, err
	}
	l.cache.SetTTL(key, orders, queryTTL)
	return orders, nil
}

// ListAllOrders is admin-only; the backend enforces that and answers
// Forbidden otherwise.
func (l *Lookup) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	key := cache.KeyAllOrders(session.SubjectFromToken(session.Token(ctx)))
	if v, ok := l.cache.Get(key); ok {
		return v.([]models.Order), nil
	}
	orders, err := l.backend.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	l.cache.SetTTL(key, orders, queryTTL)
	return orders, nil
}
