// Package memstore keeps registry state in process memory. It backs STORAGE=memory
// and is handy for tests; nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"price-registry/internal/domain"
)

type stagedKey struct{}

type Store struct {
	mu   sync.RWMutex
	data map[domain.Key]string
}

func New() *Store { return &Store{data: map[domain.Key]string{}} }

// Get sees the writes staged by an enclosing unit of work before the committed state.
func (s *Store) Get(ctx context.Context, key domain.Key) (string, bool, error) {
	if st := stagedFromCtx(ctx); st != nil {
		if v, ok := st[key]; ok {
			return v, true, nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// GetMany reads every key under one read lock.
func (s *Store) GetMany(ctx context.Context, keys ...domain.Key) (map[domain.Key]string, error) {
	out := make(map[domain.Key]string, len(keys))
	s.mu.RLock()
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	s.mu.RUnlock()
	if st := stagedFromCtx(ctx); st != nil {
		for _, k := range keys {
			if v, ok := st[k]; ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, key domain.Key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st := stagedFromCtx(ctx); st != nil {
		st[key] = value
		return nil
	}
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

// Do stages every Set made through the callback context and applies them under a
// single lock once fn returns nil.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	staged := map[domain.Key]string{}
	if err := fn(context.WithValue(ctx, stagedKey{}, staged)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range staged {
		s.data[k] = v
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func stagedFromCtx(ctx context.Context) map[domain.Key]string {
	if v, ok := ctx.Value(stagedKey{}).(map[domain.Key]string); ok {
		return v
	}
	return nil
}
