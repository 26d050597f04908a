package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sekolah-go-api/internal/config"
	"github.com/noah-isme/sekolah-go-api/internal/database"
	"github.com/noah-isme/sekolah-go-api/internal/handler"
	"github.com/noah-isme/sekolah-go-api/internal/logging"
	"github.com/noah-isme/sekolah-go-api/internal/middleware"
	"github.com/noah-isme/sekolah-go-api/internal/repository"
	"github.com/noah-isme/sekolah-go-api/internal/router"
	"github.com/noah-isme/sekolah-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)

	errorLog, errorLogCloser, err := logging.ErrorFile(cfg.ErrorLogPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.ErrorLogPath).Msg("error log unavailable, using stderr only")
	}
	defer errorLogCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, report cache disabled")
			redisClient = nil
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notifications are recorded only")
			natsConn = nil
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewStore(db)

	reportCache := service.NewReportCache(redisClient, cfg.ReportCacheTTL, logger)
	sink := service.NewLedgerSink(store.Notifications, natsConn, cfg.NATSSubject, logger)
	notifier := service.NewNotifier(sink, cfg.NotificationBuffer, cfg.NotificationWorkers, logger)
	// Workers outlive the signal context; Close drains them during shutdown.
	notifier.Start(context.Background())

	activityService := service.NewActivityService(store.Activity, logger)
	authService := service.NewAuthService(store.Schools, store.Users, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	studentService := service.NewStudentService(store, validate, activityService, reportCache, logger)
	attendanceService := service.NewAttendanceService(store, validate, notifier, reportCache, logger)
	promotionService := service.NewPromotionService(store, validate, activityService, reportCache, logger)
	holidayService := service.NewHolidayService(store.Holidays, validate, reportCache, logger)
	feeService := service.NewFeeService(store.Students, store.Fees, validate, logger)
	classService := service.NewClassService(store.Classes, validate, logger)
	notificationService := service.NewNotificationService(store.Students, store.Notifications, logger)
	seedService := service.NewSeedService(store, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	markLimit := middleware.RateLimit("attendance", cfg.RateLimitMax, cfg.RateLimitWindow)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AccessLog:    cfg.IsDevelopment(),
		AllowOrigins: cfg.CORSAllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger, errorLog),
		StudentHandler:      handler.NewStudentHandler(studentService, logger, errorLog),
		AttendanceHandler:   handler.NewAttendanceHandler(attendanceService, logger, errorLog, markLimit),
		PromotionHandler:    handler.NewPromotionHandler(promotionService, logger, errorLog),
		FeeHandler:          handler.NewFeeHandler(feeService, logger, errorLog),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, errorLog),
		HolidayHandler:      handler.NewHolidayHandler(holidayService, logger, errorLog),
		ClassHandler:        handler.NewClassHandler(classService, logger, errorLog),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger, errorLog),
		SeedHandler:         handler.NewSeedHandler(seedService, logger, errorLog),
		HealthProbes:        healthProbes(db, redisClient, natsConn),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	shutdown(app, notifier, redisClient, natsConn, logger)
}

func shutdown(app *fiber.App, notifier service.Notifier, redisClient *redis.Client, natsConn *nats.Conn, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	notifier.Close()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if natsConn != nil {
		natsConn.Close()
	}

	logger.Info().Msg("server stopped")
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return probes
}
