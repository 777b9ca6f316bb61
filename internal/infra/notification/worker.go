package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"charforge/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deliverer は Envelope を届ける（SMTPGateway）
type Deliverer interface {
	Deliver(ctx context.Context, env Envelope) error
}

// Worker はRedisのキューから通知を取り出して配送する。
// 配送に失敗したものは <key>:failed に移す。
type Worker struct {
	client    redis.UniversalClient
	key       string
	deliverer Deliverer
	poll      time.Duration
	logger    *zap.Logger
}

func NewWorker(client redis.UniversalClient, key string, deliverer Deliverer, poll time.Duration, logger *zap.Logger) *Worker {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &Worker{
		client:    client,
		key:       key,
		deliverer: deliverer,
		poll:      poll,
		logger:    logger,
	}
}

func (w *Worker) FailedKey() string { return w.key + ":failed" }

// Run はctxがキャンセルされるまで取り出しを続ける
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("notification worker started", zap.String("queue", w.key))
	defer w.logger.Info("notification worker stopped", zap.String("queue", w.key))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		res, err := w.client.BLPop(ctx, w.poll, w.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.poll):
			}
			continue
		}

		// res = [key, value]
		if len(res) == 2 {
			w.handle(ctx, res[1])
		}
	}
}

func (w *Worker) handle(ctx context.Context, raw string) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		metrics.QueueDeliveriesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		w.logger.Error("queued notification is malformed", zap.Error(err))
		w.park(ctx, raw)
		return
	}

	if err := w.deliverer.Deliver(ctx, env); err != nil {
		metrics.QueueDeliveriesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		w.logger.Warn("queued notification failed",
			zap.String("notification.id", env.ID),
			zap.String("notification.kind", string(env.Kind)),
			zap.String("recipient", env.To.Email),
			zap.Error(err),
		)
		w.park(ctx, raw)
		return
	}
	metrics.QueueDeliveriesTotal.WithLabelValues(metrics.OutcomeSent).Inc()
}

func (w *Worker) park(ctx context.Context, raw string) {
	if err := w.client.RPush(ctx, w.FailedKey(), raw).Err(); err != nil {
		w.logger.Error("failed to park notification", zap.Error(err))
	}
}
