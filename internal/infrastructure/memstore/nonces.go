package memstore

import (
	"context"
	"sync"
	"time"
)

// NonceStore reserves keys for a fixed TTL. Expired entries are dropped lazily.
type NonceStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]time.Time
}

func NewNonceStore(ttl time.Duration) *NonceStore {
	return &NonceStore{ttl: ttl, now: time.Now, keys: map[string]time.Time{}}
}

func (n *NonceStore) TryReserve(_ context.Context, key string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if exp, ok := n.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	n.keys[key] = now.Add(n.ttl)
	if len(n.keys)%1024 == 0 {
		n.sweep(now)
	}
	return true, nil
}

func (n *NonceStore) sweep(now time.Time) {
	for k, exp := range n.keys {
		if !now.Before(exp) {
			delete(n.keys, k)
		}
	}
}
