package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zymart/shopbot-backend/internal/cron"
	"github.com/Zymart/shopbot-backend/internal/disputes"
	"github.com/Zymart/shopbot-backend/internal/escrow"
	"github.com/Zymart/shopbot-backend/internal/listings"
	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/internal/stats"
	"github.com/Zymart/shopbot-backend/internal/users"
	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db"
	"github.com/Zymart/shopbot-backend/pkg/logger"
	"github.com/Zymart/shopbot-backend/pkg/metrics"
	"github.com/Zymart/shopbot-backend/pkg/migrate"
	"github.com/Zymart/shopbot-backend/pkg/redis"
)

const lockKeyFormat = "shopbot:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build job registry", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Maintenance.CronLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Maintenance.CronTickInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Registry, error) {
	listingRepo := listings.NewRepository(dbClient.DB())
	escrowRepo := escrow.NewRepository(dbClient.DB())
	notifyRepo := notify.NewRepository(dbClient.DB())
	statsRepo := stats.NewRepository(dbClient.DB())
	events := notify.NewDispatcher(notifyRepo, logg)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}
	listingService, err := listings.NewService(listingRepo, dbClient, events, listings.NewKeywordClassifier())
	if err != nil {
		return nil, err
	}
	escrowService, err := escrow.NewService(escrow.Params{
		Repo:    escrowRepo,
		Tx:      dbClient,
		Stock:   listings.NewStockKeeper(),
		Catalog: listingService,
		Users:   userService,
		Events:  events,
		Logger:  logg,
		Config:  cfg.Escrow,
	})
	if err != nil {
		return nil, err
	}

	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger: logg,
		Due:    escrowRepo,
		Escrow: escrowService,
		Config: cfg.Escrow,
	})
	if err != nil {
		return nil, err
	}

	sweepJob, err := cron.NewListingSweepJob(cron.ListingSweepJobParams{
		Logger:   logg,
		Listings: listingRepo,
		Config:   cfg.Maintenance,
	})
	if err != nil {
		return nil, err
	}

	lowStockJob, err := cron.NewLowStockJob(cron.LowStockJobParams{
		Logger:    logg,
		DB:        dbClient,
		Listings:  listingRepo,
		Events:    events,
		Dedupe:    redisClient,
		Threshold: cfg.Escrow.LowStockThreshold,
	})
	if err != nil {
		return nil, err
	}

	reconcileJob, err := cron.NewReconcileJob(cron.ReconcileJobParams{
		Logger: logg,
		DB:     dbClient,
		Escrow: escrowRepo,
		Grace:  cfg.Escrow.ReconcileGracePeriod,
	})
	if err != nil {
		return nil, err
	}

	cleanupJob, err := cron.NewCleanupJob(cron.CleanupJobParams{
		Logger:   logg,
		Listings: listingRepo,
		Escrow:   escrowRepo,
		Stats:    statsRepo,
		Outbox:   notifyRepo,
		Config:   cfg.Maintenance,
	})
	if err != nil {
		return nil, err
	}

	rollupJob, err := cron.NewStatsRollupJob(cron.StatsRollupJobParams{
		Logger:   logg,
		Escrow:   escrowRepo,
		Listings: listingRepo,
		Disputes: disputes.NewRepository(dbClient.DB()),
		Events:   notifyRepo,
		Stats:    statsRepo,
	})
	if err != nil {
		return nil, err
	}

	maint := cfg.Maintenance
	return cron.NewRegistry(
		cron.Every(cfg.Escrow.ReminderScanInterval, reminderJob),
		cron.Every(maint.ListingSweepInterval, sweepJob),
		cron.Every(maint.LowStockScanInterval, lowStockJob),
		cron.Every(maint.ReconcileScanInterval, reconcileJob),
		cron.Every(maint.CleanupInterval, cleanupJob),
		cron.Every(maint.StatsRollupInterval, rollupJob),
	), nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
