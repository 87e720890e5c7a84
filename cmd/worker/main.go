package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidstream/vidstream/internal/config"
	"github.com/vidstream/vidstream/internal/workers"
	"github.com/vidstream/vidstream/pkg/cache"
	"github.com/vidstream/vidstream/pkg/logger"
	"github.com/vidstream/vidstream/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.LogLevel)
	logger.Info("Starting VidStream trending worker...")

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	engagementConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.EngagementEvents, "trending-worker-group")

	trendingWorker := workers.NewTrendingWorker(
		engagementConsumer,
		redisClient,
		cfg.Feed.TrendingKey,
		cfg.Feed.TrendingSize,
		logger,
	)

	go func() {
		if err := trendingWorker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Trending worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	if err := trendingWorker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop trending worker")
	}

	logger.Info("Worker exited")
}
