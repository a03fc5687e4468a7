package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/pitch-booking/internal/config"
	"github.com/iliyamo/pitch-booking/internal/database"
	"github.com/iliyamo/pitch-booking/internal/handler"
	"github.com/iliyamo/pitch-booking/internal/metrics"
	"github.com/iliyamo/pitch-booking/internal/middleware"
	"github.com/iliyamo/pitch-booking/internal/repository"
	"github.com/iliyamo/pitch-booking/internal/router"
	"github.com/iliyamo/pitch-booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional for the cache and the limiter; the redis store
	// driver requires it.
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		if cfg.StoreDriver == config.DriverRedis {
			log.Fatalf("redis: %v", err)
		}
		log.Printf("redis: %v; cache and rate limit disabled", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	store, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	seed, err := service.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	ledger, err := service.Open(ctx, store, seed)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = &service.AMQPPublisher{URL: cfg.AMQPURL, Timeout: cfg.PublishTimeout}
		log.Printf("events: publishing booking events to RabbitMQ")
	}
	scheduler := service.NewScheduler(ledger, events, m)
	catalog := service.NewCatalog(ledger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestMetrics(m))

	router.RegisterRoutes(e, router.Deps{
		Pitches:      handler.NewPitchHandler(catalog),
		Bookings:     handler.NewBookingHandler(scheduler),
		Cache:        middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		BookingLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Metrics:      promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	scheduler.Close()
}

// openStore builds the DocumentStore selected by STORE_DRIVER.  The
// returned close function releases whatever the store holds open.
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (repository.DocumentStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		return repository.NewRedisStore(rdb, cfg.StoreKey), func() {}, nil
	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		s := repository.NewMySQLStore(db, cfg.StoreKey)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return s, func() { _ = db.Close() }, nil
	default:
		return repository.NewFileStore(cfg.StorePath), func() {}, nil
	}
}
