package application

import (
	"context"

	"price-registry/internal/domain"
)

// StateStore is the persistent key-value store the registry writes through.
// Get reports absence with ok=false; it never returns ErrNotFound.
type StateStore interface {
	Get(ctx context.Context, key domain.Key) (value string, ok bool, err error)
	Set(ctx context.Context, key domain.Key, value string) error
	// GetMany reads all keys from one consistent snapshot. Absent keys are left out of the result.
	GetMany(ctx context.Context, keys ...domain.Key) (map[domain.Key]string, error)
}

// Clock returns host time in seconds since the Unix epoch. It is not assumed to be monotonic.
type Clock interface {
	Now() uint64
}

// Authorizer fails when the caller has not proven control of provider for payload.
// Rejections wrap ErrUnauthorized; any other error is an infrastructure failure.
type Authorizer interface {
	RequireAuth(ctx context.Context, provider domain.Address, payload []byte) error
}

// AuditSink receives best-effort events. Implementations must not block or fail the caller.
type AuditSink interface {
	Emit(ctx context.Context, ev PriceUpdated)
}

// NonceStore handles short-lived replay protection for signed writes.
type NonceStore interface {
	// TryReserve returns true if key was absent and is now reserved.
	// Returns false if the key already exists (replay).
	TryReserve(ctx context.Context, key string) (bool, error)
}

type QuoteSource interface {
	Get(ctx context.Context, symbol string) (domain.Quote, error)
}

type Metrics interface {
	ObservePriceUpdate(result string)
	ObserveFreshnessCheck(fresh bool)
}

const (
	ResultOK           = "ok"
	ResultInvalid      = "invalid"
	ResultUnauthorized = "unauthorized"
	ResultError        = "error"
)

type PriceUpdated struct {
	Pair      domain.Pair
	Price     int64
	Provider  domain.Address
	Timestamp uint64
}

type noopMetrics struct{}

func (noopMetrics) ObservePriceUpdate(string)  {}
func (noopMetrics) ObserveFreshnessCheck(bool) {}

type noopAudit struct{}

func (noopAudit) Emit(context.Context, PriceUpdated) {}
