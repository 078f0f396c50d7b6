package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/notify"
	"shareit/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
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
	logger := baseLogger.With().Str("component", "server").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("database init error")
		return err
	}
	defer db.Close()

	if cfg.Seed.Path != "" {
		if err := seedDatabase(context.Background(), db, cfg.Seed.Path, &logger); err != nil {
			logger.Warn().Err(err).Msg("seed load error")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	eventBus := events.NewEventBus()
	subscribeMetrics(eventBus)
	if notifier := initNotifier(cfg, &logger); notifier != nil {
		notifier.Attach(eventBus)
	}

	userService := service.NewUserService(db, &logger)
	itemService := service.NewItemService(db, db, db, db, db, &logger)
	bookingService := service.NewBookingService(db, db, db, eventBus, &logger)
	requestService := service.NewRequestService(db, db, db, &logger)

	server := api.NewServer(cfg.Server.Port, userService, itemService, bookingService, requestService, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}

// seedDatabase loads fixture users and items so a fresh deployment is not
// empty. Existing rows make inserts fail on unique keys; those are skipped.
func seedDatabase(ctx context.Context, db *database.DB, path string, logger *zerolog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var seed struct {
		Users []struct {
			Email string `yaml:"email"`
			Name  string `yaml:"name"`
		} `yaml:"users"`
		Items []struct {
			Owner       string `yaml:"owner"`
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			Available   bool   `yaml:"available"`
		} `yaml:"items"`
	}
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return err
	}

	owners := make(map[string]int64)
	for _, u := range seed.Users {
		user := &models.User{Email: u.Email, Name: u.Name}
		if err := db.CreateUser(ctx, user); err != nil {
			if existing, lookupErr := db.GetUserByEmail(ctx, u.Email); lookupErr == nil {
				owners[u.Email] = existing.ID
			} else {
				logger.Warn().Err(err).Str("email", u.Email).Msg("seed user skipped")
			}
			continue
		}
		owners[u.Email] = user.ID
	}

	for _, i := range seed.Items {
		ownerID, ok := owners[i.Owner]
		if !ok {
			logger.Warn().Str("owner", i.Owner).Str("item", i.Name).Msg("seed item has unknown owner")
			continue
		}
		item := &models.Item{Name: i.Name, Description: i.Description, Available: i.Available, OwnerID: ownerID}
		if err := db.CreateItem(ctx, item); err != nil {
			logger.Warn().Err(err).Str("item", i.Name).Msg("seed item skipped")
		}
	}

	logger.Info().Int("users", len(seed.Users)).Int("items", len(seed.Items)).Msg("seed data loaded")
	return nil
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.TelegramNotifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.NotifyChatID == 0 {
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init error, notifications disabled")
		return nil
	}

	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
	return notify.NewTelegramNotifier(bot, cfg.Telegram.NotifyChatID, logger)
}

func subscribeMetrics(bus *events.EventBus) {
	for _, eventType := range []string{events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected} {
		et := eventType
		bus.Subscribe(et, func(*events.Event) error {
			metrics.IncBookingEvent(et)
			return nil
		})
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", srv.Addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
