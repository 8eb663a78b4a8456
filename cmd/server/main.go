package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Vmp3/Inkspiration-sub001/internal/access"
	"github.com/Vmp3/Inkspiration-sub001/internal/api"
	"github.com/Vmp3/Inkspiration-sub001/internal/availability"
	"github.com/Vmp3/Inkspiration-sub001/internal/config"
	"github.com/Vmp3/Inkspiration-sub001/internal/db"
	"github.com/Vmp3/Inkspiration-sub001/internal/events"
	"github.com/Vmp3/Inkspiration-sub001/internal/metrics"
	"github.com/Vmp3/Inkspiration-sub001/internal/postal"
	"github.com/Vmp3/Inkspiration-sub001/internal/reminders"
	"github.com/Vmp3/Inkspiration-sub001/internal/reports"
	"github.com/Vmp3/Inkspiration-sub001/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("INKSPIRATION_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	postalClient := postal.NewClient(cfg.Postal.BaseURL)
	if rdb != nil {
		postalClient.UseRedisCache(rdb, cfg.PostalCacheTTL())
	}

	engine := availability.NewEngine(database, database, database, nil, logger)
	authorizer := access.NewService(database, database, logger)
	bus := events.NewBus()

	var reminderService *reminders.Service
	var reminderScheduler *reminders.Scheduler
	if cfg.Reminders.Enabled && cfg.Telegram.Enabled {
		if cfg.Telegram.BotToken == "" {
			logger.Fatal().Msg("set telegram.bot_token in config to enable reminders")
		}
		notifier, err := reminders.NewTelegramNotifier(cfg.Telegram.BotToken, database)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram notifier error")
		}

		reminderMetrics := reminders.NewMetrics("inkspiration")
		reminderService = reminders.NewService(database, reminderMetrics, logger)
		sender := reminders.NewSender(
			notifier,
			database,
			database,
			reminders.NewRateLimiter(reminders.DefaultRateLimiterConfig()),
			reminders.DefaultRetryConfig(),
			reminderMetrics,
			logger,
		)
		reminderScheduler = reminders.NewScheduler(reminders.SchedulerConfig{
			CheckInterval:        cfg.ReminderCheckInterval(),
			CleanupEnabled:       cfg.Reminders.CleanupEnabled,
			CleanupRetentionDays: cfg.Reminders.CleanupRetentionDays,
		}, reminderService, sender, logger)
		go reminderScheduler.Start(ctx)
		defer reminderScheduler.Stop()
	}

	var reminderPlanner service.ReminderPlanner
	if reminderService != nil {
		reminderPlanner = reminderService
	}
	scheduling := service.NewScheduling(database, engine, authorizer, reminderPlanner, bus, logger)
	reporter := reports.NewExcelReporter(database)
	server := api.NewServer(scheduling, reporter, postalClient, logger)

	metrics.Register()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go startBackupLoop(ctx, database, cfg, &logger)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(cfg.Server.RateLimit),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("booking API started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}

func startBackupLoop(ctx context.Context, database *db.DB, cfg *config.Config, logger *zerolog.Logger) {
	if cfg.Backup.Path == "" {
		cfg.Backup.Path = "backups"
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = 24
	}
	if cfg.Backup.RetentionDays <= 0 {
		cfg.Backup.RetentionDays = 14
	}

	interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
	retention := time.Duration(cfg.Backup.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runBackupTask(database, cfg, retention, logger)
		}
	}
}

func runBackupTask(database *db.DB, cfg *config.Config, retention time.Duration, logger *zerolog.Logger) {
	timestamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(cfg.Backup.Path, fmt.Sprintf("inkspiration_%s.db", timestamp))

	logger.Info().Str("path", dest).Msg("starting database backup")
	if err := database.Backup(cfg.Database.Path, dest); err != nil {
		logger.Error().Err(err).Msg("backup failed")
		return
	}

	deleted, err := database.CleanupBackups(cfg.Backup.Path, retention)
	if err != nil {
		logger.Error().Err(err).Msg("backup cleanup failed")
	} else if deleted > 0 {
		logger.Info().Int("deleted", deleted).Msg("cleaned up old backups")
	}
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
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
