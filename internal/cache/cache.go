// Package cache is the process-wide query cache shared by the reader
// components. Entries are keyed by entity and live until explicitly
// invalidated; only short-lived order lookups carry a TTL. Mutating
// components never touch the cache directly: they publish keys on the
// Bus and the cache drops them on delivery.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// KeyProducts caches the full catalog listing.
	KeyProducts = "products"
	// KeyOrders prefixes per-user order listings; invalidating the
	// bare prefix drops every order listing.
	KeyOrders = "orders"
)

// Order keys carry the caller id: the cache is process-wide but the
// backend authorizes per caller, and a hit must never answer for a
// caller the backend would refuse.
func KeyProduct(id string) string       { return "product:" + id }
func KeyCart(userID string) string      { return "cart:" + userID }
func KeyOrder(userID, id string) string { return "order:" + userID + ":" + id }
func KeyMyOrders(userID string) string  { return KeyOrders + ":" + userID }
func KeyAllOrders(userID string) string { return KeyOrders + ":all:" + userID }
func KeyProfile(userID string) string   { return "profile:" + userID }

type Store struct {
	c   *gocache.Cache
	bus *Bus
}

// New builds a store subscribed to bus. cleanup bounds how long an
// expired TTL entry can linger before the janitor sweeps it.
func New(bus *Bus, cleanup time.Duration) *Store {
	s := &Store{
		c:   gocache.New(gocache.NoExpiration, cleanup),
		bus: bus,
	}
	bus.Subscribe(s.drop)
	return s
}

func (s *Store) Get(key string) (any, bool) {
	return s.c.Get(key)
}

// Set stores an entry that lives until invalidated.
func (s *Store) Set(key string, v any) {
	s.c.Set(key, v, gocache.NoExpiration)
}

// SetTTL stores an entry that also expires on its own; used for the
// short-lived order-lookup cache.
func (s *Store) SetTTL(key string, v any, ttl time.Duration) {
	s.c.Set(key, v, ttl)
}

// Invalidate publishes keys on the bus. The store itself is a
// subscriber, so the entries are gone by the time this returns.
func (s *Store) Invalidate(keys ...string) {
	s.bus.Publish(keys...)
}

func (s *Store) drop(key string) {
	if key == KeyOrders {
		// Collection-level invalidation: every per-user listing under
		// the prefix goes too.
		for k := range s.c.Items() {
			if len(k) > len(KeyOrders) && k[:len(KeyOrders)+1] == KeyOrders+":" {
				s.c.Delete(k)
			}
		}
	}
	s.c.Delete(key)
}
