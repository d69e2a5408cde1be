package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bookdesk/internal/api"
	"bookdesk/internal/config"
	"bookdesk/internal/events"
	"bookdesk/internal/gcal"
	"bookdesk/internal/mailer"
	"bookdesk/internal/metrics"
	"bookdesk/internal/notify"
	"bookdesk/internal/report"
	"bookdesk/internal/schedule"
	"bookdesk/internal/service"
	"bookdesk/internal/store"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("BOOKDESK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Calendar.Timezone).Msg("invalid timezone")
	}

	credentials, err := cfg.Credentials()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read google credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calendarClient, err := gcal.NewClient(ctx, credentials, cfg.Calendar.CalendarID, loc, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create calendar client")
	}

	gmailSender, err := mailer.NewGmailSender(ctx, credentials, cfg.Mail.Sender, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create gmail sender")
	}

	snapshots, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open snapshot store error")
	}
	defer snapshots.Close()

	metrics.Register()

	// Schedule config cache: the first refresh blocks startup so requests
	// never race the initial fetch; a failure falls back to the snapshot or
	// defaults and is recovered on the next tick.
	cache := schedule.NewCache(calendarClient, schedule.NewParser(logger), snapshots, logger)
	if err := cache.Watch(ctx, cfg.RefreshInterval()); err != nil {
		logger.Warn().Err(err).Msg("initial schedule fetch failed, serving last known config")
	}

	bus := events.NewEventBus()
	bus.Subscribe(events.TypeBookingCreated, func(ev events.Event) error {
		logger.Info().RawJSON("booking", ev.Payload).Msg("booking event")
		return nil
	})
	bus.Subscribe(events.TypeBookingConflict, func(ev events.Event) error {
		logger.Info().RawJSON("booking", ev.Payload).Msg("booking conflict event")
		return nil
	})

	dispatcher := notify.NewDispatcher(gmailSender, cfg.Mail.AdminEmail, loc, logger)
	bookingService := service.NewBookingService(calendarClient, dispatcher, cache, bus, loc, &logger)

	slotsService := service.NewSlotsService(calendarClient, cache, loc, &logger)
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		slotsService.UseRedisCache(rdb, cfg.CacheTTL())
	}

	server := api.NewHTTPServer(api.Config{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Schedule:    cache,
		Slots:       slotsService,
		Bookings:    bookingService,
		Reports:     report.NewService(calendarClient, loc, logger),
		AdminAPIKey: cfg.Admin.APIKey,
		RateRPS:     cfg.RateLimit.RPS,
		RateBurst:   cfg.RateLimit.Burst,
	}, logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, snapshots, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().
		Str("calendar", cfg.Calendar.CalendarID).
		Str("timezone", cfg.Calendar.Timezone).
		Int("duration_minutes", cache.Current().DurationMinutes).
		Msg("bookdesk started")

	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("API server error")
	}
}

func startHealthServer(ctx context.Context, port int, snapshots *store.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := snapshots.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
