package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/almanac-labs/almanac-api/internal/api/handlers"
	"github.com/almanac-labs/almanac-api/internal/api/middleware"
	"github.com/almanac-labs/almanac-api/internal/api/routes"
	"github.com/almanac-labs/almanac-api/internal/domain/challenges"
	"github.com/almanac-labs/almanac-api/internal/domain/habits"
	"github.com/almanac-labs/almanac-api/internal/domain/statistics"
	"github.com/almanac-labs/almanac-api/internal/infrastructure/cache"
	"github.com/almanac-labs/almanac-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/almanac-labs/almanac-api/internal/infrastructure/persistence/postgres/migrations"
	"github.com/almanac-labs/almanac-api/internal/infrastructure/scheduler"
	"github.com/almanac-labs/almanac-api/pkg/clock"
	"github.com/almanac-labs/almanac-api/pkg/config"
	"github.com/almanac-labs/almanac-api/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLogger(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Encoding",
			"Content-Type",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Encoding",
			"Content-Type",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize Redis
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	prometheus.MustRegister(cache.NewCollector(redisClient))

	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, "almanac")

	// Initialize repositories
	habitsRepo := habits.NewRepository(db)
	challengesRepo := challenges.NewRepository(db)
	progressRepo := challenges.NewProgressRepository(db)

	// Initialize services
	clk := clock.System{}
	habitsService := habits.NewService(habitsRepo, clk, log.Logger)
	challengesService := challenges.NewService(challengesRepo, progressRepo, habitsRepo, clk, log.Logger)
	statisticsService := statistics.NewService(habitsRepo, habitsService, challengesRepo, progressRepo, clk, log.Logger)

	// Completion toggles feed challenge progress
	habitsService.SetCompletionHook(challengesService.HandleCompletionChange)

	// Start the expiration sweeper
	sweep := scheduler.NewScheduler(challengesService, cfg.Scheduler.SweepInterval, log)
	sweep.Start()

	// Initialize handlers
	habitsHandler := handlers.NewHabitsHandler(habitsService)
	challengesHandler := handlers.NewChallengesHandler(challengesService)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService)

	// Health check routes (no /api prefix as these are system endpoints)
	routes.SetupHealthRoutes(router, db, redisClient)

	habitsRoutes := routes.NewHabitsRoutes(habitsHandler)
	habitsRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered habits routes at /api/habits")

	challengesRoutes := routes.NewChallengesRoutes(challengesHandler)
	challengesRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered challenges routes at /api/challenges")

	statisticsRoutes := routes.NewStatisticsRoutes(statisticsHandler)
	statisticsRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered statistics routes at /api/statistics")

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	sweep.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
