package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"visit-service/internal/auth"
	"visit-service/internal/config"
	"visit-service/internal/db"
	httphandler "visit-service/internal/http"
	"visit-service/internal/http/middleware"
	"visit-service/internal/logger"
	"visit-service/internal/metrics"
	"visit-service/internal/notify"
	"visit-service/internal/repository"
	"visit-service/internal/service"
	"visit-service/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)
	metrics.Register()

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	requestRepo := repository.NewRequestRepository(database)
	tripRepo := repository.NewTripRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	gateways := []notify.Gateway{notify.NewStoreGateway(notificationRepo)}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, publishing will be retried per notification")
		}
		cancel()
		gateways = append(gateways, notify.NewRedisGateway(rdb, cfg.Notify.Channel))
	}
	dispatcher := notify.NewDispatcher(log, cfg.Notify.Timeout, gateways...)

	machine := workflow.NewMachine(cfg.Booking.PerPersonFee, cfg.Booking.DepartureWindowDays, cfg.Booking.Location)

	catalogService := service.NewCatalogService(tripRepo, machine)
	requestService := service.NewRequestService(requestRepo, dispatcher, machine, log)
	bookingService := service.NewBookingService(requestRepo, catalogService, dispatcher, machine, log)
	notificationService := service.NewNotificationService(notificationRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	handler := httphandler.NewHandler(requestService, bookingService, catalogService, notificationService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), limiter.Handler(), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting visit service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
