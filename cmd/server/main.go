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
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dentlink/backend/internal/auth"
	"github.com/dentlink/backend/internal/cache"
	"github.com/dentlink/backend/internal/config"
	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/feed"
	"github.com/dentlink/backend/internal/handlers"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/metrics"
	"github.com/dentlink/backend/internal/middleware"
	"github.com/dentlink/backend/internal/search"
	"github.com/dentlink/backend/internal/storage"
	"github.com/dentlink/backend/internal/telemetry"
)

const serviceName = "dentlink-backend"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("dentlink server starting",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	// Initialize database
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// Prometheus metrics
	metrics.Initialize()

	// Redis is optional; cached responses and rate limiting degrade
	// gracefully when it is absent
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.WarnWithFields("Redis unavailable, response caching and rate limiting disabled", err)
	} else {
		defer redisClient.Close()
	}

	// Tracing
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.WarnWithFields("Failed to initialize tracer, continuing without tracing", err)
	}
	if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WarnWithFields("Tracer shutdown failed", err)
			}
		}()
	}

	// Auth service
	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}
	authService := auth.NewService([]byte(cfg.JWTSecret))

	// Feed service
	feedService := feed.NewService(database.DB, cfg.FeedWeights, logger.Log)

	h := handlers.NewHandlers(feedService, authService)

	// Elasticsearch is optional; search degrades to SQL without it
	if cfg.ElasticsearchURL != "" {
		searchClient, err := search.NewClient(cfg.ElasticsearchURL)
		if err != nil {
			logger.WarnWithFields("Elasticsearch unavailable, search falls back to SQL", err)
		} else if err := searchClient.InitializeIndices(context.Background()); err != nil {
			logger.WarnWithFields("Failed to initialize search indices, search falls back to SQL", err)
		} else {
			h.SetSearchClient(searchClient)
		}
	}

	// S3 uploader is optional in development
	if cfg.AWSBucket != "" {
		s3Uploader, err := storage.NewS3Uploader(cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			logger.FatalWithFields("Failed to initialize S3 uploader", err)
		}
		if err := s3Uploader.CheckBucketAccess(context.Background()); err != nil {
			logger.WarnWithFields("S3 bucket access check failed, image uploads may fail", err)
		}
		h.SetUploader(s3Uploader)
	} else {
		logger.Log.Warn("AWS_BUCKET not set, image uploads disabled")
	}

	// Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.TracingEnabled {
		r.Use(middleware.TracingMiddleware(serviceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/password-reset", h.RequestPasswordReset)
			authGroup.POST("/password-reset/confirm", h.ResetPassword)
		}

		authed := api.Group("")
		authed.Use(authService.Middleware())
		authed.Use(middleware.RedisRateLimitMiddleware(300, time.Minute))

		authed.GET("/me", h.GetMe)
		authed.PUT("/me", h.UpdateProfile)
		authed.GET("/me/saved-cases", h.ListSavedCases)

		feedGroup := authed.Group("/feed")
		{
			feedGroup.GET("", middleware.ResponseCacheMiddleware(30*time.Second), h.GetFeed)
			feedGroup.GET("/sidebar", middleware.ResponseCacheMiddleware(time.Minute), h.GetFeedSidebar)
			feedGroup.PUT("/preferences", h.UpdateFeedPreferences)
		}

		cases := authed.Group("/cases")
		{
			cases.POST("", middleware.CacheInvalidationMiddleware("response:/api/v1/feed*"), h.CreateCase)
			cases.GET("", h.ListCases)
			cases.GET("/:id", h.GetCase)
			cases.PUT("/:id", h.UpdateCase)
			cases.DELETE("/:id", h.DeleteCase)
			cases.POST("/:id/images", h.AttachCaseImage)
			cases.POST("/:id/save", h.SaveCase)
			cases.DELETE("/:id/save", h.UnsaveCase)
		}

		forum := authed.Group("/forum")
		{
			forum.POST("/threads", middleware.CacheInvalidationMiddleware("response:/api/v1/feed*"), h.CreateThread)
			forum.GET("/threads", h.ListThreads)
			forum.GET("/threads/:id", h.GetThread)
			forum.POST("/threads/:id/replies", h.CreateReply)
			forum.GET("/threads/:id/replies", h.ListReplies)
			forum.DELETE("/replies/:id", h.DeleteReply)
		}

		clinics := authed.Group("/clinics")
		{
			clinics.POST("", h.CreateClinic)
			clinics.GET("", h.ListClinics)
			clinics.GET("/:id", h.GetClinic)
			clinics.PUT("/:id", h.UpdateClinic)
			clinics.DELETE("/:id", h.DeleteClinic)
		}

		users := authed.Group("/users")
		{
			users.GET("/search", h.SearchUsers)
			users.GET("/:id", h.GetUserProfile)
			users.POST("/:id/follow", h.FollowUser)
			users.DELETE("/:id/follow", h.UnfollowUser)
			users.GET("/:id/followers", h.ListFollowers)
			users.GET("/:id/following", h.ListFollowing)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.GetUnreadCount)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
		}

		uploads := authed.Group("/uploads")
		{
			uploads.POST("/case-image", h.UploadCaseImage)
			uploads.POST("/avatar", h.UploadAvatar)
		}

		authed.POST("/reports", h.CreateReport)

		admin := authed.Group("/admin")
		admin.Use(auth.AdminMiddleware())
		{
			admin.GET("/reports", h.ListReports)
			admin.PUT("/reports/:id", h.ResolveReport)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.FatalWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("server exited")
}
