package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher appends activity events to a stream.
type Publisher interface {
	Publish(ctx context.Context, event ActivityEvent) error
}

// streamMaxLen bounds the activity stream; XADD trims it approximately.
const streamMaxLen = 100000

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewPublisher creates a Publisher that appends to StreamActivity.
func NewPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, stream: StreamActivity}
}

// Publish adds the event to the stream using XADD with an auto-generated id.
func (p *RedisPublisher) Publish(ctx context.Context, event ActivityEvent) error {
	values, err := event.ToMap()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd to stream: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"stream":     p.stream,
		"type":       event.Type,
		"message_id": messageID,
	}).Debug("Published activity event")
	return nil
}

// NopPublisher discards events. It is used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ActivityEvent) error { return nil }
