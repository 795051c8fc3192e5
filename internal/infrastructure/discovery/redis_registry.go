package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisRegistry keeps service instances in Redis. Each instance lives under
// its own key with a TTL and is indexed in a per-service set; an instance
// whose key has expired is treated as dead and pruned from the index.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

const (
	defaultInstanceTTL = 30 * time.Second
	// minInstanceTTL keeps the heartbeat interval (ttl/3) at one second or more.
	minInstanceTTL = 3 * time.Second
)

func NewRedisRegistry(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRegistry {
	switch {
	case ttl <= 0:
		ttl = defaultInstanceTTL
	case ttl < minInstanceTTL:
		ttl = minInstanceTTL
	}
	return &RedisRegistry{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisRegistry) Register(ctx context.Context, instance Instance) error {
	data, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.instanceKey(instance.ServiceName, instance.ID), data, r.ttl)
	pipe.SAdd(ctx, r.serviceKey(instance.ServiceName), instance.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register instance: %w", err)
	}

	return nil
}

// Heartbeat re-registers instance every ttl/3 until ctx is cancelled.
func (r *RedisRegistry) Heartbeat(ctx context.Context, instance Instance) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Register(ctx, instance); err != nil && ctx.Err() == nil {
				r.logger.Warn("discovery heartbeat failed",
					zap.Error(err),
					zap.String("service", instance.ServiceName),
					zap.String("instance_id", instance.ID),
				)
			}
		}
	}
}

func (r *RedisRegistry) Deregister(ctx context.Context, instance Instance) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.instanceKey(instance.ServiceName, instance.ID))
	pipe.SRem(ctx, r.serviceKey(instance.ServiceName), instance.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to deregister instance: %w", err)
	}
	return nil
}

// Instances returns the live instances of a service ordered by id.
func (r *RedisRegistry) Instances(ctx context.Context, serviceName string) ([]Instance, error) {
	ids, err := r.client.SMembers(ctx, r.serviceKey(serviceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	sort.Strings(ids)

	instances := make([]Instance, 0, len(ids))
	for _, id := range ids {
		data, err := r.client.Get(ctx, r.instanceKey(serviceName, id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				r.client.SRem(ctx, r.serviceKey(serviceName), id)
				continue
			}
			return nil, fmt.Errorf("failed to get instance: %w", err)
		}

		var instance Instance
		if err := json.Unmarshal(data, &instance); err != nil {
			r.logger.Warn("skipping malformed instance", zap.Error(err), zap.String("instance_id", id))
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

func (r *RedisRegistry) Resolve(ctx context.Context, serviceName string) (string, error) {
	instances, err := r.Instances(ctx, serviceName)
	if err != nil {
		return "", err
	}
	if len(instances) == 0 {
		return "", fmt.Errorf("%s: %w", serviceName, ErrNoInstances)
	}

	uri := strings.TrimRight(instances[0].URI, "/")
	r.logger.Debug("resolved service instance",
		zap.String("service", serviceName),
		zap.String("instance_id", instances[0].ID),
		zap.String("uri", uri),
	)
	return uri, nil
}

func (r *RedisRegistry) serviceKey(serviceName string) string {
	return fmt.Sprintf("discovery:%s", serviceName)
}

func (r *RedisRegistry) instanceKey(serviceName, id string) string {
	return fmt.Sprintf("discovery:%s:%s", serviceName, id)
}
