// Package cart keeps the local view of the backend-owned cart. The
// view is always a projection: reads go through the query cache,
// mutations go to the backend and invalidate the cached view on
// success, and display data (name/price) is joined in from the
// catalog at read time, never stored.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/catalog"
	"github.com/openmerch/storefront/internal/logging"
	"github.com/openmerch/storefront/internal/models"
	"github.com/openmerch/storefront/internal/session"
)

type Store struct {
	backend backend.Client
	catalog *catalog.Reader
	cache   *cache.Store

	// Per (user, product) sequence numbers. Rapid repeat mutations
	// for the same product can complete out of order; only the
	// response to the most recent request may touch the cache.
	mu  sync.Mutex
	seq map[string]uint64
}

func NewStore(b backend.Client, cat *catalog.Reader, c *cache.Store) *Store {
	return &Store{
		backend: b,
		catalog: cat,
		cache:   c,
		seq:     make(map[string]uint64),
	}
}

// GetCart returns the authoritative lines enriched with the current
// catalog snapshot. A line whose product no longer resolves stays in
// the result with placeholder values so the user can still see and
// remove it.
func (s *Store) GetCart(ctx context.Context) ([]models.EnrichedCartLine, error) {
	userID := session.SubjectFromToken(session.Token(ctx))
	if userID == "" {
		return []models.EnrichedCartLine{}, nil
	}

	// Only the raw lines are cached. Enrichment re-runs on every read
	// so the view picks up catalog changes as soon as the product
	// cache does.
	key := cache.KeyCart(userID)
	var lines []models.CartLine
	if v, ok := s.cache.Get(key); ok {
		lines = v.([]models.CartLine)
	} else {
		fetched, err := s.backend.GetCart(ctx)
		if err != nil {
			return nil, err
		}
		lines = fetched
		s.cache.Set(key, lines)
	}

	enriched := make([]models.EnrichedCartLine, 0, len(lines))
	for _, line := range lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			logging.FromContext(ctx).Warn("cart line did not resolve",
				"product_id", line.ProductID, "error", err)
			enriched = append(enriched, models.EnrichedCartLine{
				CartLine: line,
				Name:     models.UnknownProductName,
				Price:    0,
				Missing:  true,
			})
			continue
		}
		enriched = append(enriched, models.EnrichedCartLine{
			CartLine: line,
			Name:     product.Name,
			Price:    product.Price,
		})
	}
	return enriched, nil
}

// AddToCart sets the quantity for productID; calling it again with a
// different quantity is how quantity edits happen. At most one line
// per product ever exists.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}
	tok, err := session.RequireToken(ctx)
	if err != nil {
		return err
	}
	userID := session.SubjectFromToken(tok)

	seq := s.nextSeq(userID, productID)
	if err := s.backend.AddToCart(ctx, productID, quantity); err != nil {
		return err
	}
	s.finishMutation(ctx, userID, productID, seq)
	return nil
}

// RemoveFromCart is idempotent: removing an absent line succeeds.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	tok, err := session.RequireToken(ctx)
	if err != nil {
		return err
	}
	userID := session.SubjectFromToken(tok)

	seq := s.nextSeq(userID, productID)
	if err := s.backend.RemoveFromCart(ctx, productID); err != nil {
		return err
	}
	s.finishMutation(ctx, userID, productID, seq)
	return nil
}

// ClearCart drops every line. The backend applies it atomically, so
// on failure the cart is untouched and the cached view stays valid.
func (s *Store) ClearCart(ctx context.Context) error {
	tok, err := session.RequireToken(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.ClearCart(ctx); err != nil {
		return err
	}
	s.cache.Invalidate(cache.KeyCart(session.SubjectFromToken(tok)))
	return nil
}

// InvalidateView drops the cached cart view for the calling user.
// Checkout uses it after the backend has cleared the cart server-side.
func (s *Store) InvalidateView(ctx context.Context) {
	if userID := session.SubjectFromToken(session.Token(ctx)); userID != "" {
		s.cache.Invalidate(cache.KeyCart(userID))
	}
}

// Subtotal is Σ price·quantity in minor units. No rounding happens
// here or anywhere below the presentation boundary.
func Subtotal(lines []models.EnrichedCartLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.Price * line.Quantity
	}
	return total
}

func (s *Store) nextSeq(userID, productID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userID + "|" + productID
	s.seq[k]++
	return s.seq[k]
}

// finishMutation invalidates the cached cart view unless a newer
// request for the same product is already in flight; the newer
// request's own completion will invalidate.
func (s *Store) finishMutation(ctx context.Context, userID, productID string, seq uint64) {
	s.mu.Lock()
	current := s.seq[userID+"|"+productID] == seq
	s.mu.Unlock()

	if !current {
		logging.FromContext(ctx).Debug("stale cart response discarded",
			"product_id", productID, "seq", seq)
		return
	}
	s.cache.Invalidate(cache.KeyCart(userID))
}
