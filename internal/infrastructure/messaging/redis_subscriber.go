package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultGroupName = "payment-auditors"

type RedisEventSubscriber struct {
	client       *redis.Client
	logger       *zap.Logger
	handlers     map[string]domain.EventHandler
	consumerName string
	groupName    string
}

func NewRedisEventSubscriber(client *redis.Client, logger *zap.Logger, consumerName string) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client:       client,
		logger:       logger,
		handlers:     make(map[string]domain.EventHandler),
		consumerName: consumerName,
		groupName:    defaultGroupName,
	}
}

// Subscribe registers handler for eventType. It must be called before Start.
func (s *RedisEventSubscriber) Subscribe(ctx context.Context, eventType string, handler domain.EventHandler) error {
	streamKey := StreamKey(eventType)

	err := s.client.XGroupCreateMkStream(ctx, streamKey, s.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.handlers[eventType] = handler

	s.logger.Info("subscribed to event",
		zap.String("event_type", eventType),
		zap.String("stream", streamKey),
		zap.String("group", s.groupName),
	)

	return nil
}

func (s *RedisEventSubscriber) Start(ctx context.Context) error {
	if len(s.handlers) == 0 {
		return fmt.Errorf("no event handlers registered")
	}

	s.logger.Info("starting event subscriber",
		zap.String("consumer", s.consumerName),
		zap.String("group", s.groupName),
	)

	streams := s.streamArgs()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping event subscriber")
			return nil
		default:
			if err := s.processEvents(ctx, streams); err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.logger.Error("error processing events", zap.Error(err))
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// streamArgs lists every subscribed stream followed by one ">" per stream,
// the layout XREADGROUP expects.
func (s *RedisEventSubscriber) streamArgs() []string {
	keys := make([]string, 0, len(s.handlers)*2)
	for eventType := range s.handlers {
		keys = append(keys, StreamKey(eventType))
	}
	for range s.handlers {
		keys = append(keys, ">")
	}
	return keys
}

func (s *RedisEventSubscriber) processEvents(ctx context.Context, streamArgs []string) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.groupName,
		Consumer: s.consumerName,
		Streams:  streamArgs,
		Count:    10,
		Block:    1 * time.Second,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("failed to read from streams: %w", err)
	}

	for _, stream := range streams {
		eventType := strings.TrimPrefix(stream.Stream, "events:")
		for _, message := range stream.Messages {
			if err := s.handleMessage(ctx, eventType, message); err != nil {
				s.logger.Error("failed to handle message",
					zap.Error(err),
					zap.String("message_id", message.ID),
					zap.String("stream", stream.Stream),
				)
				continue
			}

			if err := s.client.XAck(ctx, stream.Stream, s.groupName, message.ID).Err(); err != nil {
				s.logger.Warn("failed to ack message",
					zap.Error(err),
					zap.String("message_id", message.ID),
				)
			}
		}
	}

	return nil
}

func (s *RedisEventSubscriber) handleMessage(ctx context.Context, eventType string, message redis.XMessage) error {
	handler, exists := s.handlers[eventType]
	if !exists {
		return fmt.Errorf("no handler for event type: %s", eventType)
	}

	event, err := decodeEvent(eventType, message.Values)
	if err != nil {
		return err
	}

	return handler(ctx, event)
}

func decodeEvent(eventType string, values map[string]interface{}) (domain.DomainEvent, error) {
	eventData, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid event data format")
	}

	switch eventType {
	case domain.EventTypePaymentCreated, domain.EventTypePaymentUpdated, domain.EventTypePaymentDeleted:
		var e domain.PaymentEvent
		if err := json.Unmarshal([]byte(eventData), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
