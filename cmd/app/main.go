package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/bootstrap"
	"github.com/Domenick1991/skybooking/internal/cache"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logger"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/auth"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/Domenick1991/skybooking/pkg/jwt"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.New(cfg.App)
	appLogger.WithField("environment", cfg.App.Environment).Info("Starting flight booking API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		appLogger.Fatalf("parse database config: %v", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		appLogger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		appLogger.Fatalf("ping postgres: %v", err)
	}
	appLogger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			appLogger.Fatalf("migrate: %v", err)
		}
		appLogger.Info("Database migrations applied")
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, flight reads will hit the database")
	}

	var publisher email.Publisher
	if cfg.Email.Mode == "kafka" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, appLogger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			appLogger.WithError(err).Warn("Kafka unavailable, emails will fail until it recovers")
		}
		publisher = producer
	}
	sender := email.NewSender(cfg.Email, cfg.Kafka, publisher, appLogger)

	tokens := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.VerificationTTL())

	flightService := flights.NewFlightService(repository.NewFlightRepository(pool), redisCache, appLogger)
	bookingService := booking.NewBookingService(
		repository.NewBookingStore(pool),
		repository.NewHistoryRepo(pool),
		appLogger,
		booking.WithCache(redisCache),
		booking.WithSender(sender),
		booking.WithCodeAttempts(cfg.Booking.CodeAttempts),
	)
	authService := auth.NewAuthService(
		repository.NewUserRepository(pool),
		tokens,
		sender,
		appLogger,
		cfg.App.PublicURL,
		cfg.Auth.BcryptCost,
	)

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Flights:  flightService,
		Bookings: bookingService,
		Auth:     authService,
		Tokens:   tokens,
		HealthChecks: map[string]func(ctx context.Context) error{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
		},
	}, appLogger)
	if err != nil {
		appLogger.Fatalf("server error: %v", err)
	}
}
