package cache

import "sync"

// Bus fans invalidation keys out to subscribers. Delivery is
// synchronous: when Publish returns, every subscriber has seen the
// keys, so a mutation can guarantee fresh reads before reporting
// success.
type Bus struct {
	mu   sync.RWMutex
	subs []func(key string)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(key string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(keys ...string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, key := range keys {
		for _, fn := range b.subs {
			fn(key)
		}
	}
}
