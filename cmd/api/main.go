package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Zymart/shopbot-backend/api/routes"
	"github.com/Zymart/shopbot-backend/internal/authz"
	"github.com/Zymart/shopbot-backend/internal/disputes"
	"github.com/Zymart/shopbot-backend/internal/escrow"
	"github.com/Zymart/shopbot-backend/internal/listings"
	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/internal/reports"
	"github.com/Zymart/shopbot-backend/internal/stats"
	"github.com/Zymart/shopbot-backend/internal/users"
	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db"
	"github.com/Zymart/shopbot-backend/pkg/logger"
	"github.com/Zymart/shopbot-backend/pkg/migrate"
	"github.com/Zymart/shopbot-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	events := notify.NewDispatcher(notify.NewRepository(dbClient.DB()), logg)
	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	listingService, err := listings.NewService(
		listings.NewRepository(dbClient.DB()),
		dbClient,
		events,
		listings.NewKeywordClassifier(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	escrowService, err := escrow.NewService(escrow.Params{
		Repo:    escrow.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Stock:   listings.NewStockKeeper(),
		Catalog: listingService,
		Users:   userService,
		Events:  events,
		Logger:  logg,
		Config:  cfg.Escrow,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create escrow service", err)
		os.Exit(1)
	}

	disputeService, err := disputes.NewService(
		disputes.NewRepository(dbClient.DB()),
		dbClient,
		escrowService,
		userService,
		events,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispute service", err)
		os.Exit(1)
	}

	reportService, err := reports.NewService(
		reports.NewRepository(dbClient.DB()),
		dbClient,
		events,
		cfg.Authz.OwnerUserID,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	authzService, err := authz.NewService(dbClient.DB(), cfg.Authz.OwnerUserID)
	if err != nil {
		logg.Error(context.Background(), "failed to create authz service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(stats.NewRepository(dbClient.DB()), cfg.Maintenance.TrendWindowDays)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Listings: listingService,
			Escrow:   escrowService,
			Disputes: disputeService,
			Reports:  reportService,
			Stats:    statsService,
			Users:    userService,
			Authz:    authzService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
