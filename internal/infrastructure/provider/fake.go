package provider

import (
	"context"
	"strings"
	"time"

	"price-registry/internal/application"
	"price-registry/internal/domain"
)

var _ application.QuoteSource = (*Fake)(nil)

// Fake quotes every symbol at the same fixed USD price.
type Fake struct {
	price float64
}

func NewFake(price float64) *Fake { return &Fake{price: price} }

func (f *Fake) Get(_ context.Context, symbol string) (domain.Quote, error) {
	return domain.Quote{
		Symbol:    strings.ToUpper(symbol),
		PriceUSD:  f.price,
		Source:    "fake",
		FetchedAt: time.Now().UTC(),
	}, nil
}
