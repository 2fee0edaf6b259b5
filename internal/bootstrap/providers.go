package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"price-registry/internal/application"
	"price-registry/internal/config"
	"price-registry/internal/domain"
	"price-registry/internal/infrastructure/audit"
	"price-registry/internal/infrastructure/auth"
	infraconfig "price-registry/internal/infrastructure/config"
	httpserver "price-registry/internal/infrastructure/http"
	"price-registry/internal/infrastructure/httpx"
	"price-registry/internal/infrastructure/logx"
	"price-registry/internal/infrastructure/memstore"
	"price-registry/internal/infrastructure/metrics"
	"price-registry/internal/infrastructure/pg"
	"price-registry/internal/infrastructure/provider"
	redisstore "price-registry/internal/infrastructure/redis"
	"price-registry/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")
	ErrMissingSeed  = errors.New("PUBLISHER_SEED is required")

	ErrPublisherNeedsSharedStorage = errors.New("publisher requires STORAGE=pg or STORAGE=redis")
)

// Backend is the selected state store together with its transaction boundary.
type Backend struct {
	Store application.StateStore
	UoW   application.UnitOfWork
	Ping  func(context.Context) error
}

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideMetrics() *metrics.Prometheus { return metrics.New() }

// ProvideRedisClient returns a nil client when no component is configured to use Redis.
func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	if !cfg.NeedsRedis() {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideBackend(ctx context.Context, log *zap.Logger, cfg config.Config, rdb *redis.Client) (Backend, func(), error) {
	switch cfg.Storage {
	case "", "memory":
		s := memstore.New()
		return Backend{Store: s, UoW: s, Ping: s.Ping}, func() {}, nil
	case "pg":
		db, cleanup, err := ProvideDB(ctx, log, cfg)
		if err != nil {
			return Backend{}, cleanup, err
		}
		return Backend{Store: pg.NewStore(db), UoW: &pg.UnitOfWork{Pool: db.Pool}, Ping: db.Ping}, cleanup, nil
	case "redis":
		s := redisstore.New(rdb, log)
		return Backend{Store: s, UoW: &redisstore.UnitOfWork{Client: rdb}, Ping: s.Ping}, func() {}, nil
	default:
		return Backend{}, func() {}, fmt.Errorf("unsupported STORAGE=%q", cfg.Storage)
	}
}

func ProvideNonceStore(cfg config.Config, rdb *redis.Client) (application.NonceStore, error) {
	switch cfg.NonceBackend {
	case "", "memory":
		return memstore.NewNonceStore(cfg.NonceTTL), nil
	case "redis":
		return redisstore.NewNonceStore(rdb, cfg.NonceTTL), nil
	default:
		return nil, fmt.Errorf("unsupported NONCE_BACKEND=%q", cfg.NonceBackend)
	}
}

func ProvideAuthorizer(cfg config.Config, nonces application.NonceStore, log *zap.Logger) (application.Authorizer, error) {
	allowed := make([]domain.Address, 0, len(cfg.AllowedProviders))
	for _, s := range cfg.AllowedProviders {
		addr, err := domain.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("ALLOWED_PROVIDERS: %w", err)
		}
		allowed = append(allowed, addr)
	}
	return auth.NewEd25519Authorizer(nonces,
		auth.WithAllowedProviders(allowed...),
		auth.WithMaxProofAge(cfg.NonceTTL),
		auth.WithLogger(log),
	), nil
}

func ProvideRegistry(b Backend, a application.Authorizer, m *metrics.Prometheus, cfg config.Config) (*application.PriceRegistry, error) {
	policy, err := application.ParseFreshnessPolicy(cfg.FreshnessPolicy)
	if err != nil {
		return nil, err
	}
	return application.NewPriceRegistry(b.Store, b.UoW, a,
		application.WithAuditSink(audit.NewZapSink(nil)),
		application.WithMetrics(m),
		application.WithFreshnessPolicy(policy),
	), nil
}

func ProvideHTTPServer(reg *application.PriceRegistry, b Backend, m *metrics.Prometheus, cfg config.Config) *httpserver.Server {
	return httpserver.NewServer(reg,
		httpserver.WithReadyCheck(b.Ping),
		httpserver.WithMetrics(m),
		httpserver.WithWriteLimiter(httpserver.NewRateLimiter(cfg.WriteRateRPS, cfg.WriteRateBurst)),
	)
}

func ProvideQuoteSource(cfg config.Config) (application.QuoteSource, error) {
	switch cfg.PublisherSource {
	case "", "fake":
		return provider.NewFake(cfg.FakePrice), nil
	case "dexscreener":
		return &provider.DexScreener{
			BaseURL:      cfg.DexScreenerBase,
			MinLiquidity: cfg.MinLiquidityUSD,
			Tokens:       provider.DefaultTokens(),
			Client: &httpx.Client{
				HTTP:      &http.Client{Timeout: cfg.RequestTimeout},
				Limiter:   rate.NewLimiter(rate.Every(infraconfig.DefaultUpstreamInterval), 1),
				UserAgent: "price-registry-publisher",
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported PUBLISHER_SOURCE=%q", cfg.PublisherSource)
	}
}

func ProvideSigner(cfg config.Config) (*auth.Signer, error) {
	if cfg.PublisherSeed == "" {
		return nil, ErrMissingSeed
	}
	return auth.NewSignerFromSeedHex(cfg.PublisherSeed)
}

// ProvidePublisher refuses the in-process memory store: writes would never reach the API.
func ProvidePublisher(cfg config.Config, src application.QuoteSource, reg *application.PriceRegistry, signer *auth.Signer, m *metrics.Prometheus, log *zap.Logger) (application.Worker, error) {
	switch cfg.Storage {
	case "", "memory":
		return nil, ErrPublisherNeedsSharedStorage
	}
	return &worker.Publisher{
		Source:         src,
		Registry:       reg,
		Signer:         signer,
		Symbols:        cfg.PublisherSymbols,
		Quote:          cfg.PublisherQuote,
		Decimals:       cfg.PriceDecimals,
		PollEvery:      cfg.PublisherPoll,
		Concurrency:    infraconfig.DefaultFetchConcurrency,
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        m,
		Log:            log.With(zap.String("component", "publisher")),
	}, nil
}
