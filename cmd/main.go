package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"livetokens/internal/auth"
	"livetokens/internal/config"
	"livetokens/internal/database"
	"livetokens/internal/handlers"
	"livetokens/internal/jobs"
	"livetokens/internal/lock"
	"livetokens/internal/logger"
	"livetokens/internal/notify"
	"livetokens/internal/payout"
	"livetokens/internal/repository"
	"livetokens/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.App.Debug); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redemption lock. Redis serializes redemptions across instances; the
	// in-process locker is only safe for a single node.
	var locker lock.Locker
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", err)
		}
		locker = lock.NewRedisLocker(redisClient)
		logger.Info("Using redis redemption lock", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = lock.NewLocalLocker()
		logger.Warn("REDIS_ADDR not set, using in-process redemption lock")
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Payout provider
	payoutProvider := payout.NewHTTPClient(cfg.Payout.BaseURL, cfg.Payout.APIKey, cfg.Payout.Timeout)

	// Initialize services
	accountService := services.NewAccountService(repo)
	tipService := services.NewTipService(repo, cfg.App.KingWindow, cfg.App.TipMaxRetries)
	redemptionService := services.NewRedemptionService(
		repo,
		payoutProvider,
		locker,
		cfg.App.MinimumRedemption,
		cfg.App.TokenUSDRate,
	)
	streamService := services.NewStreamService(repo)
	tipMenuService := services.NewTipMenuService(repo)
	goalService := services.NewGoalService(repo)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService, cfg.App.WebhookSecret)
	tipHandler := handlers.NewTipHandler(tipService)
	redemptionHandler := handlers.NewRedemptionHandler(redemptionService)
	streamHandler := handlers.NewStreamHandler(streamService)
	tipMenuHandler := handlers.NewTipMenuHandler(tipMenuService)
	goalHandler := handlers.NewGoalHandler(goalService)

	// Start the outbox dispatcher when NATS is configured. Without it tip
	// events stay PENDING in the outbox until a dispatcher picks them up.
	var dispatcher *jobs.OutboxDispatcher
	if cfg.Nats.URL != "" {
		publisher, err := notify.NewJetStreamPublisher(notify.Config{
			URL:        cfg.Nats.URL,
			StreamName: cfg.Nats.StreamName,
		})
		if err != nil {
			logger.Fatal("Failed to connect to NATS", err)
		}
		defer publisher.Close()

		dispatcher = jobs.NewOutboxDispatcher(repo, publisher)
		dispatcher.Start(context.Background())
		logger.Info("Outbox dispatcher started", zap.String("nats_url", cfg.Nats.URL))
	} else {
		logger.Warn("NATS_URL not set, tip events will not be dispatched")
	}

	// Set up Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Identity provider webhook (authenticated by shared secret)
	router.POST("/webhooks/identity", accountHandler.IdentityWebhook)

	// Public room routes
	router.GET("/api/king-of-room", tipHandler.GetKingOfRoom)
	router.GET("/api/streams/:username", streamHandler.GetStreamByUsername)
	router.GET("/api/tip-menu/:username", tipMenuHandler.ListItems)
	router.GET("/api/goals/:username", goalHandler.ListGoals)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Token balance endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/tokens", accountHandler.GetTokens)
			userRoutes.POST("/tokens", accountHandler.CreditTokens)
		}

		// Tip endpoints
		api.POST("/tips", tipHandler.SendTip)
		api.GET("/tips", tipHandler.ListTips)

		// Redemption endpoints
		api.POST("/redemptions", redemptionHandler.Redeem)
		api.GET("/redemptions", redemptionHandler.ListRedemptions)

		// Stream settings endpoints
		api.GET("/stream", streamHandler.GetOwnStream)
		api.PATCH("/stream", streamHandler.UpdateStream)

		// Tip menu management endpoints
		api.POST("/tip-menu", tipMenuHandler.CreateItem)
		api.PATCH("/tip-menu/:id", tipMenuHandler.UpdateItem)
		api.DELETE("/tip-menu/:id", tipMenuHandler.DeleteItem)

		// Token goal endpoints
		api.POST("/goals", goalHandler.CreateGoal)
		api.PATCH("/goals/:id", goalHandler.UpdateGoal)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if dispatcher != nil {
		dispatcher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", err)
	}

	logger.Info("Server exited")
}
