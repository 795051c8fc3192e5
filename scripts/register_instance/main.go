package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gigmile/payments-microservice/internal/config"
	"github.com/gigmile/payments-microservice/internal/infrastructure/discovery"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registers a users-service instance in the Redis registry and keeps it alive
// until interrupted. Useful for pointing a local API at a stub users service.
func main() {
	cfg := config.Load()

	service := flag.String("service", cfg.Users.ServiceName, "service name to register")
	uri := flag.String("uri", "http://localhost:8081", "base URL of the instance")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	registry := discovery.NewRedisRegistry(client, cfg.Discovery.TTL, zap.NewNop())

	instance := discovery.Instance{
		ID:          uuid.New().String(),
		ServiceName: *service,
		URI:         *uri,
	}
	if err := registry.Register(ctx, instance); err != nil {
		log.Fatalf("Failed to register instance: %v", err)
	}

	fmt.Printf("Registered %s instance %s at %s (Ctrl+C to stop)\n", instance.ServiceName, instance.ID, instance.URI)

	registry.Heartbeat(ctx, instance)

	if err := registry.Deregister(context.Background(), instance); err != nil {
		log.Fatalf("Failed to deregister instance: %v", err)
	}
	fmt.Println("Instance deregistered")
}
