package notification

import (
	"context"

	"charforge/internal/usecase"

	"go.uber.org/zap"
)

// LogGateway は送らずにログに出すだけ（開発用）
type LogGateway struct {
	envelopeNotifier
	logger *zap.Logger
}

func NewLogGateway(logger *zap.Logger) *LogGateway {
	g := &LogGateway{logger: logger}
	g.envelopeNotifier = envelopeNotifier{deliver: g.deliver}
	return g
}

var _ usecase.Notifier = (*LogGateway)(nil)

func (g *LogGateway) deliver(_ context.Context, env Envelope) error {
	g.logger.Info("notification",
		zap.String("notification.id", env.ID),
		zap.String("notification.kind", string(env.Kind)),
		zap.String("recipient", env.To.Email),
		zap.Any("params", env.Params),
	)
	return nil
}
