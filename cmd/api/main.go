package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigmile/payments-microservice/internal/application/service"
	"github.com/gigmile/payments-microservice/internal/config"
	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/gigmile/payments-microservice/internal/infrastructure/discovery"
	"github.com/gigmile/payments-microservice/internal/infrastructure/messaging"
	sqlrepository "github.com/gigmile/payments-microservice/internal/infrastructure/repository/mysql"
	"github.com/gigmile/payments-microservice/internal/infrastructure/userclient"
	"github.com/gigmile/payments-microservice/internal/interface/http/handler"
	"github.com/gigmile/payments-microservice/internal/interface/http/router"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	cfg := config.Load()

	deleteSelection, err := domain.ParseDeleteSelection(cfg.Payments.DeleteSelection)
	if err != nil {
		logger.Fatal("invalid payments configuration", zap.Error(err))
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Fatal("failed to connect to MySQL", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Fatal("MySQL ping failed", zap.Error(err))
	}

	if err := sqlrepository.Migrate(db); err != nil {
		logger.Fatal("failed to auto-migrate schemas", zap.Error(err))
	}

	logger.Info("connected to MySQL successfully", zap.String("host", cfg.MySQL.Host))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis successfully")

	var (
		resolver discovery.Resolver
		registry *discovery.RedisRegistry
	)
	switch cfg.Discovery.Mode {
	case config.DiscoveryStatic:
		resolver = discovery.NewStaticResolver(map[string]string{
			cfg.Users.ServiceName: cfg.Discovery.StaticUsersURL,
		})
	case config.DiscoveryRedis:
		registry = discovery.NewRedisRegistry(redisClient, cfg.Discovery.TTL, logger)
		resolver = registry
	default:
		logger.Fatal("unknown discovery mode", zap.String("mode", cfg.Discovery.Mode))
	}
	logger.Info("service discovery configured", zap.String("mode", cfg.Discovery.Mode))

	users := userclient.NewClient(userclient.Config{
		ServiceName:   cfg.Users.ServiceName,
		AccountAPIURL: cfg.Users.AccountAPIURL,
		Timeout:       cfg.Users.Timeout,
	}, resolver, logger)
	defer users.Close()

	repos := sqlrepository.NewRepositories(db, logger)

	eventPublisher := messaging.NewRedisEventPublisher(redisClient, logger)
	logger.Info("event publishing enabled")

	handlers := handler.NewHandlers(repos, users, eventPublisher, service.Options{
		DeleteSelection:   deleteSelection,
		ResolveOriginUser: cfg.Payments.ResolveOriginUser,
	}, logger)
	r := router.NewRouter(handlers, logger)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("address", serverAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	defer stopHeartbeat()

	self := discovery.Instance{
		ID:          uuid.New().String(),
		ServiceName: cfg.Discovery.ServiceName,
		URI:         cfg.Discovery.InstanceURL,
	}
	if registry != nil {
		if err := registry.Register(ctx, self); err != nil {
			logger.Fatal("failed to register instance", zap.Error(err))
		}
		go registry.Heartbeat(heartbeatCtx, self)
		logger.Info("instance registered",
			zap.String("service", self.ServiceName),
			zap.String("instance_id", self.ID),
			zap.String("uri", self.URI),
		)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	stopHeartbeat()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if registry != nil {
		if err := registry.Deregister(shutdownCtx, self); err != nil {
			logger.Warn("failed to deregister instance", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
