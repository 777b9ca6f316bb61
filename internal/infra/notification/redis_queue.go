package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"charforge/internal/usecase"

	"github.com/redis/go-redis/v9"
)

// RedisQueue は通知をRedisのリストに積むだけで返る。配送は Worker が行う。
type RedisQueue struct {
	envelopeNotifier
	client redis.UniversalClient
	key    string
}

func NewRedisQueue(client redis.UniversalClient, key string) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("notification: redis client is required")
	}
	if key == "" {
		return nil, errors.New("notification: queue key is required")
	}
	q := &RedisQueue{client: client, key: key}
	q.envelopeNotifier = envelopeNotifier{deliver: q.Enqueue}
	return q, nil
}

var _ usecase.Notifier = (*RedisQueue)(nil)

func (q *RedisQueue) Key() string { return q.key }

func (q *RedisQueue) Enqueue(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("notification: marshal envelope: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("notification: enqueue %s: %w", env.Kind, err)
	}
	return nil
}
