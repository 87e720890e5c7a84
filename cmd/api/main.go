package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream/internal/config"
	"github.com/vidstream/vidstream/internal/handlers"
	"github.com/vidstream/vidstream/internal/middleware"
	"github.com/vidstream/vidstream/internal/repository"
	"github.com/vidstream/vidstream/internal/services"
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
	logger.Info("Starting VidStream API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	engagementProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.EngagementEvents)
	defer engagementProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	tweetRepo := repository.NewTweetRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(db.DB)
	historyRepo := repository.NewHistoryRepository(db.DB)
	playlistRepo := repository.NewPlaylistRepository(db.DB)

	storageTimeout := cfg.Feed.StorageTimeout

	userService := services.NewUserService(userRepo, storageTimeout, logger)
	historyService := services.NewHistoryService(historyRepo, userRepo, likeRepo, storageTimeout, logger)
	videoService := services.NewVideoService(videoRepo, userRepo, likeRepo, commentRepo, historyService, redisClient, engagementProducer, &cfg.Feed, logger)
	engagementService := services.NewEngagementService(userRepo, videoRepo, commentRepo, tweetRepo, likeRepo, subscriptionRepo, engagementProducer, storageTimeout, logger)
	channelService := services.NewChannelService(userRepo, videoRepo, likeRepo, subscriptionRepo, storageTimeout, logger)
	commentService := services.NewCommentService(videoRepo, commentRepo, userRepo, likeRepo, engagementProducer, storageTimeout, logger)
	tweetService := services.NewTweetService(tweetRepo, userRepo, likeRepo, storageTimeout, logger)
	playlistService := services.NewPlaylistService(playlistRepo, videoRepo, userRepo, likeRepo, storageTimeout, logger)
	trendingService := services.NewTrendingService(redisClient, videoRepo, userRepo, likeRepo, cfg.Feed.TrendingKey, cfg.Feed.MaxPageSize, storageTimeout, logger)

	jwtExpiry := int64(cfg.JWT.ExpireTime.Seconds())
	userHandler := handlers.NewUserHandler(userService, channelService, historyService, cfg.JWT.Secret, jwtExpiry)
	videoHandler := handlers.NewVideoHandler(videoService, channelService, trendingService)
	socialHandler := handlers.NewSocialHandler(engagementService, channelService, commentService, tweetService, playlistService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	jwtConfig := &middleware.JWTConfig{Secret: cfg.JWT.Secret}

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		// Public reads carry an optional token: the viewer shapes the view
		// (subscription flags, like flags, watch history) but is not required.
		public := api.Group("")
		public.Use(middleware.NewOptionalJWTAuth(jwtConfig))
		{
			public.GET("/videos", videoHandler.ListVideos)
			public.GET("/videos/trending", videoHandler.GetTrending)
			public.GET("/videos/:id", videoHandler.GetVideo)
			public.GET("/videos/:id/comments", socialHandler.GetVideoComments)
			public.GET("/channels/:username", userHandler.GetChannelProfile)
			public.GET("/users/:id/videos", videoHandler.GetChannelVideos)
			public.GET("/users/:id/tweets", socialHandler.GetUserTweets)
			public.GET("/users/:id/subscribers", socialHandler.GetSubscribers)
			public.GET("/users/:id/subscriptions", socialHandler.GetSubscribedChannels)
			public.GET("/users/:id/playlists", socialHandler.GetUserPlaylists)
			public.GET("/playlists/:id", socialHandler.GetPlaylist)
		}

		protected := api.Group("")
		protected.Use(middleware.NewJWTAuth(jwtConfig))
		{
			protected.POST("/users/refresh", userHandler.RefreshToken)
			protected.GET("/users/me", userHandler.GetCurrentUser)
			protected.PUT("/users/profile", userHandler.UpdateProfile)
			protected.GET("/users/history", userHandler.GetWatchHistory)
			protected.GET("/users/liked-videos", socialHandler.GetLikedVideos)

			protected.POST("/videos", videoHandler.PublishVideo)
			protected.PUT("/videos/:id", videoHandler.UpdateVideo)
			protected.DELETE("/videos/:id", videoHandler.DeleteVideo)
			protected.PATCH("/videos/:id/publish", videoHandler.TogglePublishStatus)
			protected.GET("/channels/stats/:id", videoHandler.GetChannelStats)

			protected.POST("/videos/:id/like", socialHandler.ToggleVideoLike)
			protected.POST("/comments/:id/like", socialHandler.ToggleCommentLike)
			protected.POST("/tweets/:id/like", socialHandler.ToggleTweetLike)
			protected.POST("/channels/subscribe/:id", socialHandler.ToggleSubscription)

			protected.POST("/videos/:id/comments", socialHandler.CreateComment)
			protected.PUT("/comments/:id", socialHandler.UpdateComment)
			protected.DELETE("/comments/:id", socialHandler.DeleteComment)

			protected.POST("/tweets", socialHandler.CreateTweet)
			protected.PUT("/tweets/:id", socialHandler.UpdateTweet)
			protected.DELETE("/tweets/:id", socialHandler.DeleteTweet)

			protected.POST("/playlists", socialHandler.CreatePlaylist)
			protected.PUT("/playlists/:id", socialHandler.UpdatePlaylist)
			protected.DELETE("/playlists/:id", socialHandler.DeletePlaylist)
			protected.POST("/playlists/:id/videos/:videoId", socialHandler.AddVideoToPlaylist)
			protected.DELETE("/playlists/:id/videos/:videoId", socialHandler.RemoveVideoFromPlaylist)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	dirs := []string{"logs", "uploads", "configs"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Failed to create directory %s: %v", dir, err)
		}
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "viduser"
  password: "vidpass"
  dbname: "vidstream"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    engagement_events: "engagement-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 24h

feed:
  default_page_size: 10
  max_page_size: 50
  cache_ttl: 1m
  storage_timeout: 5s
  trending_key: "trending:videos"
  trending_size: 100

log_level: "info"`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
