package worker

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"price-registry/internal/application"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/auth"
	"price-registry/internal/infrastructure/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var _ application.Worker = (*Publisher)(nil)

// PriceWriter is the write side of the registry.
type PriceWriter interface {
	SetPrice(ctx context.Context, pair domain.Pair, price int64, provider domain.Address) error
}

type PublishMetrics interface {
	ObservePublish(symbol, result string)
}

// Publisher periodically fetches quotes and submits them, signed, to the registry.
type Publisher struct {
	Source   application.QuoteSource
	Registry PriceWriter
	Signer   *auth.Signer

	Symbols        []string
	Quote          string
	Decimals       int
	PollEvery      time.Duration
	Concurrency    int
	RequestTimeout time.Duration

	Metrics PublishMetrics
	Log     *zap.Logger
}

func (p *Publisher) Start(ctx context.Context) {
	log := p.logger()
	poll := p.PollEvery
	if poll <= 0 {
		poll = config.DefaultPublisherPoll
	}
	log.Info("publisher.started",
		zap.Duration("poll_every", poll),
		zap.Strings("symbols", p.Symbols),
		zap.String("provider", p.Signer.Address().String()),
	)

	p.Tick(ctx)

	t := time.NewTicker(poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("publisher.stopped")
			return
		case <-t.C:
			p.Tick(ctx)
		}
	}
}

// Tick publishes every configured symbol once and returns how many were written.
// A failing symbol is logged and skipped.
func (p *Publisher) Tick(ctx context.Context) int {
	log := p.logger()
	start := time.Now()
	limit := p.Concurrency
	if limit <= 0 {
		limit = config.DefaultFetchConcurrency
	}

	var ok atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, sym := range p.Symbols {
		sym := strings.ToUpper(sym)
		g.Go(func() error {
			if err := p.publishOne(gctx, sym); err != nil {
				log.Warn("publisher.symbol_failed", zap.String("symbol", sym), zap.Error(err))
				p.observe(sym, "error")
				return nil
			}
			p.observe(sym, "ok")
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	log.Info("publisher.tick_done",
		zap.Int("published", int(ok.Load())),
		zap.Int("symbols", len(p.Symbols)),
		zap.Duration("duration", time.Since(start)),
	)
	return int(ok.Load())
}

func (p *Publisher) publishOne(ctx context.Context, symbol string) error {
	if p.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.RequestTimeout)
		defer cancel()
	}
	q, err := p.Source.Get(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetch quote: %w", err)
	}
	decimals := p.Decimals
	if decimals <= 0 {
		decimals = config.DefaultPriceDecimals
	}
	price, ok := q.FixedPoint(decimals)
	if !ok {
		return fmt.Errorf("quote %v not representable with %d decimals", q.PriceUSD, decimals)
	}

	pair := p.pairFor(symbol)
	provider := p.Signer.Address()
	proof := p.Signer.Sign(application.SetPriceMessage(pair, price, provider))
	if err := p.Registry.SetPrice(auth.WithProof(ctx, proof), pair, price, provider); err != nil {
		return fmt.Errorf("set price %s: %w", pair, err)
	}
	p.logger().Debug("publisher.published",
		zap.String("pair", string(pair)),
		zap.Int64("price", price),
		zap.String("source", q.Source),
	)
	return nil
}

func (p *Publisher) pairFor(symbol string) domain.Pair {
	quote := p.Quote
	if quote == "" {
		quote = "USD"
	}
	return domain.Pair(symbol + "/" + strings.ToUpper(quote))
}

func (p *Publisher) observe(symbol, result string) {
	if p.Metrics != nil {
		p.Metrics.ObservePublish(symbol, result)
	}
}

func (p *Publisher) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
