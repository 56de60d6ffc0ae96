// @title           LinkDesk Backend API
// @version         1.0.0
// @description     Backend API for link-building orders: client review of site submissions per target page, bulk domain qualification, DataForSEO keyword analysis and draft orders.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"linkdesk-backend/internal/config"
	"linkdesk-backend/internal/database"
	"linkdesk-backend/internal/dataforseo"
	"linkdesk-backend/internal/drafts"
	"linkdesk-backend/internal/handlers"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/middleware"
	"linkdesk-backend/internal/qualification"
	"linkdesk-backend/internal/review"
	"linkdesk-backend/internal/services"
	"linkdesk-backend/internal/slots"
	"linkdesk-backend/internal/supabase"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		appLogger.Error("DATABASE_URL not set; set it to the Supabase PostgreSQL connection string")
		os.Exit(1)
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		appLogger.Error("Failed to initialize database client", logger.Error(err))
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := database.NewMigrator(dbClient.DB(), appLogger).Run(context.Background()); err != nil {
		appLogger.Error("Migration failed", logger.Error(err))
		os.Exit(1)
	}

	// Supabase REST (realtime event rows) and Storage (exports)
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize Supabase client", logger.Error(err))
		os.Exit(1)
	}
	realtimeClient := supabaseClient.Realtime(appLogger)
	storageClient := supabaseClient.Storage()

	// Redis only backs the DataForSEO cache; without it every analysis calls the API
	var (
		redisClient *redis.Client
		cache       dataforseo.Cache
	)
	if cfg.RedisAddress != "" {
		redisClient, err = dataforseo.NewRedisClient(context.Background(), cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis unavailable, DataForSEO cache disabled", logger.Error(err))
		} else {
			defer redisClient.Close()
			cache = dataforseo.NewRedisCache(redisClient, cfg.DataForSEOCacheTTL)
		}
	}

	appMetrics := metrics.New(nil)

	displayStrategy, err := slots.ParseDisplayStrategy(cfg.SlotDisplayStrategy)
	if err != nil {
		appLogger.Error("Invalid slot display strategy", logger.Error(err))
		os.Exit(1)
	}

	reviewService := review.NewService(dbClient, realtimeClient, appMetrics, appLogger, review.Options{
		MutationTimeout: cfg.MutationTimeout,
		Strategy:        displayStrategy,
	})
	qualificationService := qualification.NewService(dbClient, appMetrics, appLogger)
	analysisService := dataforseo.NewService(
		dbClient,
		dataforseo.NewClient(cfg.DataForSEOBaseURL, cfg.DataForSEOLogin, cfg.DataForSEOPassword),
		cache,
		appMetrics,
		appLogger,
	)
	draftService := drafts.NewService(dbClient, cfg.DraftAutosaveDelay, appMetrics, appLogger)
	exportService := services.NewExportService(reviewService, storageClient, realtimeClient, appMetrics, appLogger)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthChecks := map[string]handlers.HealthCheck{
		"database": dbClient.DB().PingContext,
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	router.GET("/health", handlers.NewHealthHandler(healthChecks).Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	handlers.RegisterRoutes(api, handlers.Handlers{
		Orders:       handlers.NewOrdersHandler(dbClient, reviewService, exportService),
		Review:       handlers.NewReviewHandler(dbClient, reviewService),
		Export:       handlers.NewExportHandler(dbClient, exportService),
		Drafts:       handlers.NewDraftsHandler(draftService),
		BulkAnalysis: handlers.NewBulkAnalysisHandler(qualificationService),
		DataForSEO:   handlers.NewDataForSEOHandler(analysisService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server starting", logger.String("port", cfg.Port), logger.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Error(err))
	}

	// pending autosaves are written before the database closes
	draftService.Close()
	appLogger.Info("Server exited")
}
