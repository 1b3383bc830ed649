package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/elastic-opd/internal/adapters/cache"
	"github.com/zatekoja/elastic-opd/internal/adapters/database"
	"github.com/zatekoja/elastic-opd/internal/adapters/events"
	"github.com/zatekoja/elastic-opd/internal/api/handlers"
	"github.com/zatekoja/elastic-opd/internal/api/routes"
	"github.com/zatekoja/elastic-opd/internal/application/services"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/elastic-opd/internal/infrastructure/clients/redis"
	"github.com/zatekoja/elastic-opd/internal/infrastructure/observability"
	"github.com/zatekoja/elastic-opd/pkg/config"
)

func main() {
	// .env is optional, environment variables take precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Environment)

	ctx := context.Background()

	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize OpenTelemetry, continuing without tracing")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("Failed to shut down OpenTelemetry")
				}
			}()
		}

		metrics, err = observability.InitMetrics()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize metrics, continuing without them")
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	doctorRepo := database.NewDoctorAdapter(pgClient)
	tokenRepo := database.NewTokenAdapter(pgClient)

	// Redis is optional. Without it the service runs uncached and without
	// queue update events.
	redisCli, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache and events")
		redisCli = nil
	} else {
		defer redisCli.Close()
		doctorRepo = database.NewCachedDoctorAdapter(doctorRepo, cache.NewRedisAdapter(redisCli))
	}

	queueService := services.NewQueueService(doctorRepo, tokenRepo)

	var sseHandler *handlers.SSEHandler
	if redisCli != nil {
		eventBus := events.NewRedisEventBus(redisCli)
		defer eventBus.Close()
		queueService.SetEventBus(eventBus)
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	handler := routes.NewRouter(routes.Config{
		DoctorHandler: handlers.NewDoctorHandler(doctorRepo),
		QueueHandler:  handlers.NewQueueHandler(queueService),
		TokenHandler:  handlers.NewTokenHandler(queueService, metrics),
		SSEHandler:    sseHandler,
		Metrics:       metrics,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// No WriteTimeout: the SSE endpoints hold their response open.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
