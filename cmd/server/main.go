package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins

	cfg := config.Load()
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "hotel-booking",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal("database unavailable", "error", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal("schema setup failed", "error", err)
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, cache and rate limit disabled", "error", err)
	} else {
		defer rdb.Close()
	}

	// Repositories
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	profiles := repository.NewProfileRepo(db)
	tokens := repository.NewTokenRepo(db)
	reviews := repository.NewReviewRepo(db)
	amenities := repository.NewAmenityRepo(db)

	// Booking events: published by handlers, consumed here to text guests.
	publisher := service.NewBookingPublisher(cfg.AMQPURL, log.Logger)
	consumer := &queue.Consumer{
		URL:      cfg.AMQPURL,
		Profiles: profiles,
		Notifier: service.NewNotifier(cfg.Notify, log.Logger),
		Log:      log.Logger,
	}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", "error", err)
		}
	}()

	ratings := &service.RatingScheduler{Spec: cfg.RatingSpec, Repo: reviews, Log: log.Logger}
	if rdb != nil {
		ratings.OnChange = func(ctx context.Context) {
			if _, err := middleware.PurgeCache(ctx, rdb, cfg.Cache.Prefix); err != nil {
				log.Warn("cache purge after rating refresh failed", "error", err)
			}
		}
	}
	jobs, err := ratings.Start(ctx)
	if err != nil {
		log.Fatal("rating scheduler", "error", err)
	}
	sweeper := &service.TokenSweeper{Spec: cfg.TokenSweepSpec, Keep: 7 * 24 * time.Hour, Repo: tokens, Log: log.Logger}
	if err := sweeper.Register(ctx, jobs); err != nil {
		log.Fatal("token sweeper", "error", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log.Logger))
	e.Use(middleware.Recover(log.Logger))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb, log.Logger))
	e.Use(middleware.NewRedisCache(cfg.Cache, rdb, log.Logger))
	invalidate := middleware.InvalidateCache(cfg.Cache, rdb, log.Logger)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, profiles, tokens, log.Logger), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(hotels, rooms, reviews, amenities, log.Logger))
	router.RegisterCustomer(e, handler.NewCustomerHandler(hotels, rooms, bookings, reviews, publisher, log.Logger), cfg.JWTSecret)
	router.RegisterOwner(e, handler.NewOwnerHandler(hotels, rooms, bookings, publisher, log.Logger), cfg.JWTSecret, invalidate)
	router.RegisterAdmin(e, handler.NewAdminHandler(profiles, hotels, bookings, amenities, publisher, log.Logger), cfg.JWTSecret, invalidate)

	addr := cfg.Addr()
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
