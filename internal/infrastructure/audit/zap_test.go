package audit

import (
	"context"
	"testing"

	"price-registry/internal/application"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapSink_Emit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewZapSink(zap.New(core))

	sink.Emit(context.Background(), application.PriceUpdated{
		Pair:      "BTC/USD",
		Price:     6_500_000,
		Provider:  "prov",
		Timestamp: 1_000_000,
	})

	entries := logs.FilterMessage("price.updated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "BTC/USD", fields["pair"])
	require.Equal(t, int64(6_500_000), fields["price"])
	require.Equal(t, "prov", fields["provider"])
	require.Equal(t, uint64(1_000_000), fields["timestamp"])
}
