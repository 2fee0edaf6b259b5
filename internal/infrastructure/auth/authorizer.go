package auth

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"price-registry/internal/application"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/config"

	"go.uber.org/zap"
)

// Ed25519Authorizer checks that a write carries a valid signature by the
// provider's key over the payload, a single-use nonce and an issue time.
// Proofs older than the max age are rejected even after their nonce
// reservation has expired, so the max age must not exceed the nonce TTL.
type Ed25519Authorizer struct {
	allowed map[domain.Address]struct{}
	nonces  application.NonceStore
	clock   application.Clock
	maxAge  uint64
	skew    uint64
	log     *zap.Logger
}

var _ application.Authorizer = (*Ed25519Authorizer)(nil)

type AuthorizerOption func(*Ed25519Authorizer)

// WithAllowedProviders restricts writes to the listed addresses. An empty list allows any provider.
func WithAllowedProviders(addrs ...domain.Address) AuthorizerOption {
	return func(a *Ed25519Authorizer) {
		for _, addr := range addrs {
			a.allowed[addr] = struct{}{}
		}
	}
}

func WithLogger(l *zap.Logger) AuthorizerOption {
	return func(a *Ed25519Authorizer) {
		if l != nil {
			a.log = l
		}
	}
}

func WithClock(c application.Clock) AuthorizerOption {
	return func(a *Ed25519Authorizer) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithMaxProofAge bounds how long after IssuedAt a proof is accepted.
func WithMaxProofAge(d time.Duration) AuthorizerOption {
	return func(a *Ed25519Authorizer) {
		if d > 0 {
			a.maxAge = uint64(d / time.Second)
		}
	}
}

func NewEd25519Authorizer(nonces application.NonceStore, opts ...AuthorizerOption) *Ed25519Authorizer {
	a := &Ed25519Authorizer{
		allowed: map[domain.Address]struct{}{},
		nonces:  nonces,
		clock:   application.SystemClock{},
		maxAge:  uint64(config.DefaultNonceTTL / time.Second),
		skew:    uint64(config.DefaultProofClockSkew / time.Second),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Ed25519Authorizer) RequireAuth(ctx context.Context, provider domain.Address, payload []byte) error {
	proof, ok := ProofFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: missing proof", application.ErrUnauthorized)
	}
	if proof.Nonce == "" {
		return fmt.Errorf("%w: empty nonce", application.ErrUnauthorized)
	}
	pub, err := provider.PublicKey()
	if err != nil {
		return fmt.Errorf("%w: %w", application.ErrUnauthorized, err)
	}
	if !ed25519.Verify(pub, SignedMessage(payload, proof.Nonce, proof.IssuedAt), proof.Signature) {
		a.log.Warn("auth.bad_signature", zap.String("provider", provider.String()))
		return fmt.Errorf("%w: bad signature", application.ErrUnauthorized)
	}
	if err := a.checkAge(proof.IssuedAt); err != nil {
		a.log.Warn("auth.proof_expired",
			zap.String("provider", provider.String()),
			zap.Uint64("issued_at", proof.IssuedAt),
			zap.Error(err),
		)
		return err
	}
	if len(a.allowed) > 0 {
		if _, ok := a.allowed[provider]; !ok {
			a.log.Warn("auth.provider_not_allowed", zap.String("provider", provider.String()))
			return fmt.Errorf("%w: provider not allowed", application.ErrUnauthorized)
		}
	}
	if a.nonces == nil {
		return nil
	}
	fresh, err := a.nonces.TryReserve(ctx, "nonce:"+provider.String()+":"+proof.Nonce)
	if err != nil {
		return fmt.Errorf("reserve nonce: %w", err)
	}
	if !fresh {
		a.log.Warn("auth.nonce_replay", zap.String("provider", provider.String()), zap.String("nonce", proof.Nonce))
		return fmt.Errorf("%w: nonce already used", application.ErrUnauthorized)
	}
	return nil
}

func (a *Ed25519Authorizer) checkAge(issuedAt uint64) error {
	now := a.clock.Now()
	if issuedAt > now && issuedAt-now > a.skew {
		return fmt.Errorf("%w: proof issued in the future", application.ErrUnauthorized)
	}
	if now > issuedAt && now-issuedAt > a.maxAge {
		return fmt.Errorf("%w: proof expired", application.ErrUnauthorized)
	}
	return nil
}
