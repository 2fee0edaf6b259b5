package redisstore_test

import (
	"context"
	"errors"
	"testing"

	"price-registry/internal/application"
	"price-registry/internal/domain"
	redisstore "price-registry/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	_ application.StateStore = (*redisstore.Store)(nil)
	_ application.UnitOfWork = (*redisstore.UnitOfWork)(nil)
	_ application.NonceStore = (*redisstore.NonceStore)(nil)
)

func setup(t *testing.T) (*miniredis.Miniredis, *redisstore.Store, *redisstore.UnitOfWork) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisstore.New(client, zap.NewNop()), &redisstore.UnitOfWork{Client: client}
}

func TestStore_GetSet(t *testing.T) {
	mr, s, _ := setup(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, domain.PriceKey("BTC/USD"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, domain.PriceKey("BTC/USD"), "6500000"))
	v, ok, err := s.Get(ctx, domain.PriceKey("BTC/USD"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "6500000", v)

	got, err := mr.Get("registry:price:BTC/USD")
	require.NoError(t, err)
	require.Equal(t, "6500000", got)
	require.NoError(t, s.Ping(ctx))
}

func TestUnitOfWork_CommitsAllFields(t *testing.T) {
	mr, s, uow := setup(t)
	ctx := context.Background()

	err := uow.Do(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Set(ctx, domain.PriceKey("ETH/USD"), "1"))
		require.NoError(t, s.Set(ctx, domain.TimeKey("ETH/USD"), "2"))
		// queued, not yet applied
		require.False(t, mr.Exists("registry:price:ETH/USD"))
		return s.Set(ctx, domain.ProviderKey("ETH/USD"), "P1")
	})
	require.NoError(t, err)

	for _, k := range []string{"registry:price:ETH/USD", "registry:time:ETH/USD", "registry:provider:ETH/USD"} {
		require.True(t, mr.Exists(k), k)
	}
}

func TestUnitOfWork_DiscardsOnError(t *testing.T) {
	mr, s, uow := setup(t)
	boom := errors.New("boom")

	err := uow.Do(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Set(ctx, domain.PriceKey("ETH/USD"), "1"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists("registry:price:ETH/USD"))
}

func TestStore_GetMany(t *testing.T) {
	_, s, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, domain.PriceKey("BTC/USD"), "1"))
	require.NoError(t, s.Set(ctx, domain.ProviderKey("BTC/USD"), "P1"))

	got, err := s.GetMany(ctx, domain.PriceKey("BTC/USD"), domain.TimeKey("BTC/USD"), domain.ProviderKey("BTC/USD"))
	require.NoError(t, err)
	require.Equal(t, map[domain.Key]string{
		domain.PriceKey("BTC/USD"):    "1",
		domain.ProviderKey("BTC/USD"): "P1",
	}, got)

	got, err = s.GetMany(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRegistry_OverRedis(t *testing.T) {
	_, s, uow := setup(t)
	ctx := context.Background()
	reg := application.NewPriceRegistry(s, uow, allowAll{}, application.WithClock(fixedClock(1_000_000)))

	require.NoError(t, reg.SetPrice(ctx, "BTC/USD", 6_500_000, "P1"))
	rec, ok, err := reg.GetRecord(ctx, "BTC/USD")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.PriceRecord{Pair: "BTC/USD", Price: 6_500_000, Timestamp: 1_000_000, Provider: "P1"}, rec)
}

type allowAll struct{}

func (allowAll) RequireAuth(context.Context, domain.Address, []byte) error { return nil }

type fixedClock uint64

func (c fixedClock) Now() uint64 { return uint64(c) }
