package audit

import (
	"context"

	"price-registry/internal/application"
	"price-registry/internal/infrastructure/logx"

	"go.uber.org/zap"
)

// ZapSink writes price updates to the structured log.
type ZapSink struct {
	log *zap.Logger
}

var _ application.AuditSink = (*ZapSink)(nil)

// NewZapSink logs through l, or through the request-scoped logx logger when l is nil.
func NewZapSink(l *zap.Logger) *ZapSink {
	return &ZapSink{log: l}
}

func (s *ZapSink) Emit(ctx context.Context, ev application.PriceUpdated) {
	l := s.log
	if l == nil {
		l = logx.WithFields(ctx)
	}
	l.Info("price.updated",
		zap.String("pair", string(ev.Pair)),
		zap.Int64("price", ev.Price),
		zap.String("provider", ev.Provider.String()),
		zap.Uint64("timestamp", ev.Timestamp),
	)
}
