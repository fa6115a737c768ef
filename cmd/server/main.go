package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/booking"
	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/logging"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/review"
	"github.com/iliyamo/event-ticketing/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Development())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.DSN(cfg.DB))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var rdb *redis.Client
	if c, err := config.NewRedisClient(ctx, cfg.Redis); err != nil {
		log.Warn("redis unavailable, caching and rate limiting disabled", zap.Error(err))
	} else {
		rdb = c
		defer func() { _ = rdb.Close() }()
	}

	venues := repository.NewVenueRepo(db)
	events := repository.NewEventRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)

	opts := []booking.Option{booking.WithLocation(cfg.Booking.Location)}
	if cfg.BrokerURL != "" {
		opts = append(opts, booking.WithPublisher(queue.NewPublisher(cfg.BrokerURL)))
	}
	ledger := booking.NewLedger(shows, bookings, log.Named("booking"), opts...)

	var attendance review.AttendanceChecker
	if cfg.Booking.ReviewRequireAttendance {
		attendance = ledger
	}
	reviewSvc := review.NewService(reviews, attendance, log.Named("review"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestID(), middleware.RequestLogger(log.Named("http")))

	router.RegisterRoutes(e, router.Handlers{
		Health:   handler.Health(db),
		Bookings: handler.NewBookingHandler(ledger),
		Reviews:  handler.NewReviewHandler(reviewSvc),
		Catalog:  handler.NewCatalogHandler(venues, events, shows, cfg.Booking.Location, log.Named("catalog")),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Log:       log.Named("http"),
	})
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, admin routes are unauthenticated")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(sctx)
	})
	if cfg.BrokerURL != "" {
		audit, err := queue.OpenAuditLog(cfg.AuditLogPath)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer func() { _ = audit.Close() }()
		consumer := queue.NewConsumer(cfg.BrokerURL, audit, log.Named("consumer"))
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	err = g.Wait()
	log.Info("stopped")
	return err
}
