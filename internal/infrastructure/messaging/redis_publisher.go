package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// streamMaxLen caps each event stream; trimming is approximate.
const streamMaxLen = 100000

// StreamKey is the Redis stream that carries events of eventType.
func StreamKey(eventType string) string {
	return fmt.Sprintf("events:%s", eventType)
}

type RedisEventPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisEventPublisher(client *redis.Client, logger *zap.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{
		client: client,
		logger: logger,
	}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	streamKey := StreamKey(event.GetEventType())

	values, err := encodeEvent(event)
	if err != nil {
		return err
	}

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.Error(err),
			zap.String("event_type", event.GetEventType()),
			zap.String("event_id", event.GetEventID()),
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
		zap.String("stream", streamKey),
	)

	return nil
}

func encodeEvent(event domain.DomainEvent) (map[string]interface{}, error) {
	eventData, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return map[string]interface{}{
		"event_id":     event.GetEventID(),
		"event_type":   event.GetEventType(),
		"aggregate_id": event.GetAggregateID(),
		"occurred_at":  event.GetOccurredAt().Unix(),
		"data":         string(eventData),
	}, nil
}
