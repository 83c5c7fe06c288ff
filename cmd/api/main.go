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

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/onlytoseef/earnshadowhub/internal/api/handlers"
	"github.com/onlytoseef/earnshadowhub/internal/api/middleware"
	"github.com/onlytoseef/earnshadowhub/internal/api/routes"
	"github.com/onlytoseef/earnshadowhub/internal/domain/events"
	"github.com/onlytoseef/earnshadowhub/internal/domain/submission"
	"github.com/onlytoseef/earnshadowhub/internal/domain/task"
	"github.com/onlytoseef/earnshadowhub/internal/domain/user"
	"github.com/onlytoseef/earnshadowhub/internal/domain/wallet"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/cache"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/persistence/postgres/migrations"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/scheduler"
	"github.com/onlytoseef/earnshadowhub/internal/infrastructure/storage"
	"github.com/onlytoseef/earnshadowhub/pkg/config"
	"github.com/onlytoseef/earnshadowhub/pkg/logger"
)

// @title           EarnShadowHub API
// @version         1.0
// @description     A task completion rewards platform: users start sponsored tasks, submit evidence, and earn wallet credits on admin approval.

// @host      localhost:8000
// @BasePath

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLoggerWithLevel(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Set up Gin
	if cfg.Server.Mode == "release" || cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	metrics := middleware.NewMetricsMiddleware()
	router.Use(metrics.CollectMetrics())

	corsConfig := cors.Config{
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     append(cfg.CORS.AllowedHeaders, "Content-Type", "Authorization"),
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

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

	// Logrus logger for the event publisher
	eventLogger := logrus.New()
	eventLogger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "release" || cfg.Server.Mode == "production" {
		eventLogger.SetLevel(logrus.InfoLevel)
	} else {
		eventLogger.SetLevel(logrus.DebugLevel)
	}
	publisher := events.NewPublisher(redisClient, eventLogger)

	// Evidence storage for submission screenshots
	evidenceStore, err := storage.NewEvidenceStore(cfg.Uploads, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize evidence storage", zap.Error(err))
	}
	router.Static(cfg.Uploads.PublicPath, cfg.Uploads.Dir)

	// Initialize repositories
	taskRepo := task.NewRepository(db)
	userRepo := user.NewRepository(db)
	submissionRepo := submission.NewRepository(db)

	// Initialize services. The submission repository doubles as the task
	// catalog's submission gauge; the user repository resolves plan tiers.
	walletService := wallet.NewService(db, log.Logger)
	taskService := task.NewService(taskRepo, submissionRepo, userRepo, redisClient, log.Logger)
	submissionService := submission.NewService(submissionRepo, taskRepo, walletService, publisher, log.Logger)

	// Start the expiration sweeper
	sweeper := scheduler.NewSweeper(submissionService, cfg.Sweeper.Interval, log)
	sweeper.Start()
	defer sweeper.Stop()
	log.Info("Expiration sweeper started")

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, evidenceStore)
	walletHandler := handlers.NewWalletHandler(walletService)
	userHandler := handlers.NewUserHandler(userRepo)

	// Register routes
	routes.SetupHealthRoutes(router, db, redisClient)

	taskRoutes := routes.NewTaskRoutes(taskHandler, cfg.Auth.JWTSecret)
	taskRoutes.RegisterRoutes(router)
	log.Info("Registered task routes at /api/tasks and /api/admin/tasks")

	submissionRoutes := routes.NewSubmissionRoutes(submissionHandler, cfg.Auth.JWTSecret)
	submissionRoutes.RegisterRoutes(router)
	log.Info("Registered submission routes at /api/submissions and /api/admin/submissions")

	walletRoutes := routes.NewWalletRoutes(walletHandler, cfg.Auth.JWTSecret)
	walletRoutes.RegisterRoutes(router)
	log.Info("Registered wallet routes at /api/wallet")

	userRoutes := routes.NewUserRoutes(userHandler, cfg.Auth.JWTSecret)
	userRoutes.RegisterRoutes(router)
	log.Info("Registered user management routes at /api/admin/users")

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
