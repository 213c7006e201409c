package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/laraibshahid/carrental/internal/application"
	"github.com/laraibshahid/carrental/internal/cache"
	"github.com/laraibshahid/carrental/internal/config"
	bookingDomain "github.com/laraibshahid/carrental/internal/domain/booking"
	"github.com/laraibshahid/carrental/internal/handler"
	"github.com/laraibshahid/carrental/internal/payment"
	"github.com/laraibshahid/carrental/internal/repository"
	"github.com/laraibshahid/carrental/internal/scheduler"
	"github.com/laraibshahid/carrental/pkg/auth"
	"github.com/laraibshahid/carrental/pkg/database"
	"github.com/laraibshahid/carrental/pkg/health"
	"github.com/laraibshahid/carrental/pkg/kafka"
	"github.com/laraibshahid/carrental/pkg/logger"
	"github.com/laraibshahid/carrental/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-rental")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-rental",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.VehicleModel{},
			&repository.BookingModel{},
			&repository.PaymentAttemptModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := cfg.DBConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize Redis client for the vehicle cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	attemptRepo := repository.NewGormPaymentAttemptRepository(db)
	cachedVehicles := cache.NewVehicleCache(vehicleRepo, redisClient, cfg.RedisConfig.TTL, log)

	// Initialize the payment authorizer (simulated; no external gateway)
	authorizer := payment.NewSimulatedAuthorizer(
		cfg.BookingPolicy.AuthorizeSuccessRate,
		cfg.BookingPolicy.AuthorizeLatency,
		uint64(time.Now().UnixNano()),
	)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		cachedVehicles,
		attemptRepo,
		authorizer,
		bookingDomain.NewStandardPricingStrategy(),
		bookingDomain.NewSystemClock(),
		application.BookingPolicy{
			MinDuration:    cfg.BookingPolicy.MinDuration,
			MaxDuration:    cfg.BookingPolicy.MaxDuration,
			PaymentTimeout: cfg.BookingPolicy.PaymentTimeout,
		},
		kafkaProducer,
		log,
	)
	vehicleService := application.NewVehicleService(cachedVehicles, bookingRepo, log)
	queryService := application.NewQueryService(bookingRepo, cachedVehicles, log)

	// Start the lifecycle sweeper in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := scheduler.NewLifecycleSweeper(bookingService, cfg.BookingPolicy.SweepInterval, log)
	go sweeper.Start(ctx)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, queryService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	adminHandler := handler.NewAdminHandler(bookingService, queryService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-rental")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	vehicleHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-rental...")

	// Stop the sweeper
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-rental stopped")
}
