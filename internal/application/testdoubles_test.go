package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"price-registry/internal/domain"
)

var (
	ErrRepo = errors.New("repo error")
)

type stagedKey struct{}

// fakeStore stages writes made inside Do and applies them on success.
type fakeStore struct {
	mu        sync.Mutex
	data      map[domain.Key]string
	getErr    error
	failOnSet int // 1-based index of the Set call that fails; 0 disables
	sets      int
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[domain.Key]string{}} }

func (f *fakeStore) Get(_ context.Context, key domain.Key) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeStore) GetMany(_ context.Context, keys ...domain.Key) (map[domain.Key]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[domain.Key]string, len(keys))
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeStore) Set(ctx context.Context, key domain.Key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.failOnSet > 0 && f.sets == f.failOnSet {
		return ErrRepo
	}
	if staged, ok := ctx.Value(stagedKey{}).(map[domain.Key]string); ok {
		staged[key] = value
		return nil
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	staged := map[domain.Key]string{}
	if err := fn(context.WithValue(ctx, stagedKey{}, staged)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range staged {
		f.data[k] = v
	}
	return nil
}

func (f *fakeStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

type fakeClock struct{ now uint64 }

func (c *fakeClock) Now() uint64 { return c.now }

type fakeAuthorizer struct {
	allowed  map[domain.Address]bool
	err      error
	payloads [][]byte
}

func (a *fakeAuthorizer) RequireAuth(_ context.Context, provider domain.Address, payload []byte) error {
	a.payloads = append(a.payloads, payload)
	if a.err != nil {
		return a.err
	}
	if !a.allowed[provider] {
		return fmt.Errorf("%w: %s", ErrUnauthorized, provider)
	}
	return nil
}

type fakeAudit struct{ events []PriceUpdated }

func (f *fakeAudit) Emit(_ context.Context, ev PriceUpdated) { f.events = append(f.events, ev) }

type fakeMetrics struct {
	updates map[string]int
	fresh   map[bool]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{updates: map[string]int{}, fresh: map[bool]int{}}
}

func (m *fakeMetrics) ObservePriceUpdate(result string) { m.updates[result]++ }
func (m *fakeMetrics) ObserveFreshnessCheck(fresh bool) { m.fresh[fresh]++ }
