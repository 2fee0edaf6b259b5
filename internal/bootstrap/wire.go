//go:build wireinject

package bootstrap

import (
	"context"

	"price-registry/internal/application"
	httpserver "price-registry/internal/infrastructure/http"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideBackend,
	ProvideNonceStore,
	ProvideAuthorizer,
	ProvideRegistry,
)

// API injector: builds *httpserver.Server + Cleanup
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	wire.Build(
		infraSet,
		ProvideHTTPServer,
	)
	return nil, nil, nil
}

// Publisher injector: builds application.Worker + Cleanup
func InitPublisher(ctx context.Context) (application.Worker, func(), error) {
	wire.Build(
		infraSet,
		ProvideQuoteSource,
		ProvideSigner,
		ProvidePublisher,
	)
	return nil, nil, nil
}
