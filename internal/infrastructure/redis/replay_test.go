package redisstore_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"price-registry/internal/application"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/auth"
	redisstore "price-registry/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stepClock struct{ now uint64 }

func (c *stepClock) Now() uint64 { return c.now }

func TestSetPrice_ReplayAfterNonceExpiryRejected(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redisstore.New(client, zap.NewNop())
	clock := &stepClock{now: 1_700_000_000}
	ttl := time.Hour
	authz := auth.NewEd25519Authorizer(
		redisstore.NewNonceStore(client, ttl),
		auth.WithClock(clock),
		auth.WithMaxProofAge(ttl),
	)
	reg := application.NewPriceRegistry(store, &redisstore.UnitOfWork{Client: client}, authz, application.WithClock(clock))

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer := auth.NewSigner(priv)
	ctx := context.Background()

	old := signer.SignAt(application.SetPriceMessage("BTC/USD", 100, signer.Address()), "n-old", clock.now)
	require.NoError(t, reg.SetPrice(auth.WithProof(ctx, old), "BTC/USD", 100, signer.Address()))

	clock.now += 60
	fresh := signer.SignAt(application.SetPriceMessage("BTC/USD", 200, signer.Address()), "n-new", clock.now)
	require.NoError(t, reg.SetPrice(auth.WithProof(ctx, fresh), "BTC/USD", 200, signer.Address()))

	mr.FastForward(2 * time.Hour)
	clock.now += 2 * 60 * 60
	require.False(t, mr.Exists("registry:nonce:nonce:"+signer.Address().String()+":n-old"))

	err = reg.SetPrice(auth.WithProof(ctx, old), "BTC/USD", 100, signer.Address())
	require.ErrorIs(t, err, application.ErrUnauthorized)

	price, ok, err := reg.GetPrice(ctx, domain.Pair("BTC/USD"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(200), price)
}
