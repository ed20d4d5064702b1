package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

// Publisher is the subset of the Redis client used for alerts.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	Close() error
}

// RedisEmitter publishes each event as JSON on a Redis pub/sub channel.
type RedisEmitter struct {
	pub     Publisher
	channel string
	log     *slog.Logger
}

func NewRedisEmitter(pub Publisher, channel string) *RedisEmitter {
	return &RedisEmitter{pub: pub, channel: channel, log: slog.Default()}
}

func (e *RedisEmitter) Emit(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}
	receivers, err := e.pub.Publish(ctx, e.channel, payload)
	if err != nil {
		return err
	}
	if receivers == 0 {
		e.log.Debug("Alert published with no subscribers", "channel", e.channel, "event", event.ID)
	}
	return nil
}

func (e *RedisEmitter) EmitBatch(ctx context.Context, events []*domain.Event) error {
	for _, ev := range events {
		if err := e.Emit(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (e *RedisEmitter) Close() error {
	return e.pub.Close()
}
