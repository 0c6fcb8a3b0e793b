package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus carries realtime events over redis pub/sub.
type RedisBus struct {
	c   *redis.Client
	log *zap.Logger
}

func NewRedisBus(c *redis.Client, log *zap.Logger) *RedisBus {
	return &RedisBus{c: c, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.c.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (<-chan Event, func(), error) {
	ps := b.c.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Warn("dropping malformed event", zap.String("topic", topic), zap.Error(err))
				continue
			}
			select {
			case out <- e:
			default:
				b.log.Warn("subscriber is slow, dropping event", zap.String("topic", topic))
			}
		}
	}()
	return out, func() { _ = ps.Close() }, nil
}
