package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStream publishes events onto a Redis stream used as the move topic.
type RedisStream struct {
	client *redis.Client
	topic  string
	maxLen int64
}

func NewRedisStream(client *redis.Client, topic string, maxLen int64) *RedisStream {
	return &RedisStream{
		client: client,
		topic:  topic,
		maxLen: maxLen,
	}
}

func (that *RedisStream) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = that.client.XAdd(ctx, &redis.XAddArgs{
		Stream: that.topic,
		MaxLen: that.maxLen,
		Approx: true,
		Values: map[string]any{
			"game_id": event.GameID,
			"event":   payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add event to stream %s: %w", that.topic, err)
	}

	return nil
}
