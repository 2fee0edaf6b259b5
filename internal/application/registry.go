package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"price-registry/internal/domain"
)

// PriceRegistry holds one provider-published price per pair. It keeps no state
// between calls; every read and write goes through the StateStore.
type PriceRegistry struct {
	store     StateStore
	uow       UnitOfWork
	auth      Authorizer
	clock     Clock
	audit     AuditSink
	metrics   Metrics
	freshness FreshnessPolicy
}

type Option func(*PriceRegistry)

func WithClock(c Clock) Option         { return func(r *PriceRegistry) { r.clock = c } }
func WithAuditSink(s AuditSink) Option { return func(r *PriceRegistry) { r.audit = s } }
func WithMetrics(m Metrics) Option     { return func(r *PriceRegistry) { r.metrics = m } }
func WithFreshnessPolicy(p FreshnessPolicy) Option {
	return func(r *PriceRegistry) { r.freshness = p }
}

func NewPriceRegistry(store StateStore, uow UnitOfWork, auth Authorizer, opts ...Option) *PriceRegistry {
	r := &PriceRegistry{
		store: store,
		uow:   uow,
		auth:  auth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = SystemClock{}
	}
	if r.audit == nil {
		r.audit = noopAudit{}
	}
	if r.metrics == nil {
		r.metrics = noopMetrics{}
	}
	return r
}

// SetPrice stores price for pair on behalf of provider, stamped with the host clock.
// Nothing is written unless the authorizer accepts the call.
func (r *PriceRegistry) SetPrice(ctx context.Context, pair domain.Pair, price int64, provider domain.Address) error {
	if !domain.ValidatePair(string(pair)) {
		r.metrics.ObservePriceUpdate(ResultInvalid)
		return fmt.Errorf("%w: %w", ErrBadRequest, domain.ErrInvalidPair)
	}
	if err := r.auth.RequireAuth(ctx, provider, SetPriceMessage(pair, price, provider)); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			r.metrics.ObservePriceUpdate(ResultUnauthorized)
			return err
		}
		r.metrics.ObservePriceUpdate(ResultError)
		return fmt.Errorf("authorize provider: %w", err)
	}

	rec := domain.PriceRecord{
		Pair:      pair,
		Price:     price,
		Timestamp: r.clock.Now(),
		Provider:  provider,
	}
	err := r.uow.Do(ctx, func(ctx context.Context) error {
		if err := r.store.Set(ctx, domain.PriceKey(pair), strconv.FormatInt(rec.Price, 10)); err != nil {
			return err
		}
		if err := r.store.Set(ctx, domain.TimeKey(pair), strconv.FormatUint(rec.Timestamp, 10)); err != nil {
			return err
		}
		return r.store.Set(ctx, domain.ProviderKey(pair), string(rec.Provider))
	})
	if err != nil {
		r.metrics.ObservePriceUpdate(ResultError)
		return fmt.Errorf("store price record: %w", err)
	}
	r.metrics.ObservePriceUpdate(ResultOK)
	r.audit.Emit(ctx, PriceUpdated{
		Pair:      rec.Pair,
		Price:     rec.Price,
		Provider:  rec.Provider,
		Timestamp: rec.Timestamp,
	})
	return nil
}

func (r *PriceRegistry) GetPrice(ctx context.Context, pair domain.Pair) (int64, bool, error) {
	v, ok, err := r.store.Get(ctx, domain.PriceKey(pair))
	if err != nil || !ok {
		return 0, false, wrapGet("price", err)
	}
	p, err := decodePrice(pair, v)
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}

func (r *PriceRegistry) GetTimestamp(ctx context.Context, pair domain.Pair) (uint64, bool, error) {
	v, ok, err := r.store.Get(ctx, domain.TimeKey(pair))
	if err != nil || !ok {
		return 0, false, wrapGet("timestamp", err)
	}
	ts, err := decodeTimestamp(pair, v)
	if err != nil {
		return 0, false, err
	}
	return ts, true, nil
}

func (r *PriceRegistry) GetProvider(ctx context.Context, pair domain.Pair) (domain.Address, bool, error) {
	v, ok, err := r.store.Get(ctx, domain.ProviderKey(pair))
	if err != nil || !ok {
		return "", false, wrapGet("provider", err)
	}
	return domain.Address(v), true, nil
}

// GetRecord reads all three fields of a pair from one store snapshot, so the
// result never mixes two writes. A record with only some fields present is
// reported as ErrPartialRecord.
func (r *PriceRegistry) GetRecord(ctx context.Context, pair domain.Pair) (domain.PriceRecord, bool, error) {
	vals, err := r.store.GetMany(ctx, domain.PriceKey(pair), domain.TimeKey(pair), domain.ProviderKey(pair))
	if err != nil {
		return domain.PriceRecord{}, false, wrapGet("record", err)
	}
	priceRaw, okPrice := vals[domain.PriceKey(pair)]
	tsRaw, okTime := vals[domain.TimeKey(pair)]
	provider, okProvider := vals[domain.ProviderKey(pair)]
	switch {
	case !okPrice && !okTime && !okProvider:
		return domain.PriceRecord{}, false, nil
	case !okPrice || !okTime || !okProvider:
		return domain.PriceRecord{}, false, fmt.Errorf("%w: %s", ErrPartialRecord, pair)
	}
	price, err := decodePrice(pair, priceRaw)
	if err != nil {
		return domain.PriceRecord{}, false, err
	}
	ts, err := decodeTimestamp(pair, tsRaw)
	if err != nil {
		return domain.PriceRecord{}, false, err
	}
	return domain.PriceRecord{Pair: pair, Price: price, Timestamp: ts, Provider: domain.Address(provider)}, true, nil
}

// IsFresh reports whether the stored timestamp for pair is at most maxAge seconds
// behind the host clock. A pair that was never written is not fresh.
func (r *PriceRegistry) IsFresh(ctx context.Context, pair domain.Pair, maxAge uint64) (bool, error) {
	now := r.clock.Now()
	ts, ok, err := r.GetTimestamp(ctx, pair)
	if err != nil {
		return false, err
	}
	fresh := ok && r.freshness.Age(now, ts) <= maxAge
	r.metrics.ObserveFreshnessCheck(fresh)
	return fresh, nil
}

func decodePrice(pair domain.Pair, v string) (int64, error) {
	p, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode price for %s: %w", pair, err)
	}
	return p, nil
}

func decodeTimestamp(pair domain.Pair, v string) (uint64, error) {
	ts, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode timestamp for %s: %w", pair, err)
	}
	return ts, nil
}

func wrapGet(field string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("get %s: %w", field, err)
}
