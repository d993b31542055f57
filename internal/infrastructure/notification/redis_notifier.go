package notification

import (
	"context"
	"fmt"

	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/pkg/redis"
)

const channelPrefix = "ledger:"

var publish = redis.Publish

// RedisNotifier publishes each event payload on the ledger:<topic> channel
type RedisNotifier struct{}

// NewRedisNotifier creates a notifier on the shared Redis client
func NewRedisNotifier() *RedisNotifier {
	return &RedisNotifier{}
}

// Channel returns the pub/sub channel for a topic
func Channel(topic string) string {
	return channelPrefix + topic
}

// Notify publishes the raw event payload
func (n *RedisNotifier) Notify(ctx context.Context, event *entities.OutboxEvent) error {
	if _, err := publish(ctx, Channel(event.Topic), string(event.Payload)); err != nil {
		return fmt.Errorf("publish %s: %w", event.Topic, err)
	}
	return nil
}
