package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"price-registry/internal/bootstrap"
	"price-registry/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, cleanup, err := bootstrap.InitPublisher(ctx)
	if err != nil {
		log.Fatal("init publisher", zap.Error(err))
	}
	defer cleanup()

	w.Start(ctx)
}
