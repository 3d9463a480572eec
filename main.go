package main

import (
	"context"
	"log"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/data/memory"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/notification"
	"cinema-reservation/internal/payment"
	"cinema-reservation/internal/wire"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/redisx"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx := context.Background()

	var repos *repository.Repository
	switch config.Database.Driver {
	case "memory":
		repos = memory.NewDemoStore(logger).Repository()
		logger.Info("Using in-memory storage with demo data")
	default:
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if config.Database.AutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				logger.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
		logger.Info("Database connected successfully")

		repos = repository.NewRepository(db, logger)
	}

	infra := wire.Infra{
		Gateway: payment.NewSimulatedGateway(config.Booking.DeclineAmountOver, logger),
	}

	if config.Redis.Addr != "" {
		rdb, err := redisx.New(ctx, config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache and rate limits", zap.Error(err))
		} else {
			defer rdb.Close()
			infra.Cache = redisx.NewCache(rdb, config.Redis.CacheTTL)
			infra.Idempotency = redisx.NewIdempotencyStore(rdb, config.Booking.IdempotencyTTL)
			infra.Limiter = redisx.NewSlidingWindowLimiter(rdb, "bookings", config.Booking.CommitRateLimit, config.Booking.CommitRateWindow)
			infra.SeatEvents = redisx.NewSeatEvents(rdb)
		}
	}

	var mailer notification.Notifier = notification.NewLogNotifier(logger)
	if config.Email.Host != "" {
		smtpMailer, err := notification.NewSMTPMailer(config.Email, logger)
		if err != nil {
			logger.Warn("Invalid SMTP settings, confirmations will only be logged", zap.Error(err))
		} else {
			mailer = smtpMailer
		}
	}

	var background []func(ctx context.Context) error
	if config.RabbitMQ.URL != "" {
		publisher := notification.NewAMQPPublisher(config.RabbitMQ.URL, config.RabbitMQ.Queue, logger)
		defer publisher.Close()
		infra.Notifier = publisher

		consumer := notification.NewConsumer(config.RabbitMQ.URL, config.RabbitMQ.Queue, mailer, logger)
		background = append(background, consumer.Run)
	} else {
		infra.Notifier = mailer
	}

	app := wire.Wiring(repos, infra, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger, background...); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
