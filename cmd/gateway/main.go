package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "gateway").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	states, redisClient := initStateRepository(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	client := gateway.NewClient(cfg.Gateway.ServerURL)
	gw := gateway.NewGateway(cfg.Gateway, client, states, &logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return gw.Shutdown(shutdownCtx)
}

// initStateRepository builds the rate limit store: redis first with an
// in-memory fallback, memory alone when redis is not configured.
func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.StateRepository, *redis.Client) {
	fallback := repository.NewMemoryStateRepository()

	if cfg.Redis.Address == "" {
		return fallback, nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisStateRepository(redisClient)
	return repository.NewFailoverStateRepository(primary, fallback, logger), redisClient
}
