package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// Published outbox rows are kept two weeks so the daily rollup and support
// lookups still have recent history to read.
const publishedEventMaxAge = 14 * 24 * time.Hour

// CleanupJobParams configure the weekly retention sweep.
type CleanupJobParams struct {
	Logger   *logger.Logger
	Listings terminalListingPurger
	Escrow   settledTransactionPurger
	Stats    dailyStatPurger
	Outbox   publishedEventPurger
	Config   config.MaintenanceConfig
}

type terminalListingPurger interface {
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type settledTransactionPurger interface {
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type dailyStatPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type publishedEventPurger interface {
	DeletePublishedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewCleanupJob builds the cron job that removes settled records past their
// retention window.
func NewCleanupJob(params CleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Escrow == nil {
		return nil, fmt.Errorf("escrow repository required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("notify repository required")
	}
	return &cleanupJob{
		logg:     params.Logger,
		listings: params.Listings,
		escrow:   params.Escrow,
		stats:    params.Stats,
		outbox:   params.Outbox,
		cfg:      params.Config,
		now:      time.Now,
	}, nil
}

type cleanupJob struct {
	logg     *logger.Logger
	listings terminalListingPurger
	escrow   settledTransactionPurger
	stats    dailyStatPurger
	outbox   publishedEventPurger
	cfg      config.MaintenanceConfig
	now      func() time.Time
}

func (j *cleanupJob) Name() string { return "retention-cleanup" }

func (j *cleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs []error
	counts := map[string]any{}

	if removed, err := j.listings.DeleteTerminalOlderThan(ctx, now.Add(-j.cfg.TerminalListingMaxAge)); err != nil {
		errs = append(errs, fmt.Errorf("purge terminal listings: %w", err))
	} else {
		counts["listings"] = removed
	}
	if removed, err := j.escrow.DeleteTerminalOlderThan(ctx, now.Add(-j.cfg.CompletedTxMaxAge)); err != nil {
		errs = append(errs, fmt.Errorf("purge settled transactions: %w", err))
	} else {
		counts["transactions"] = removed
	}
	if removed, err := j.stats.DeleteOlderThan(ctx, now.Add(-j.cfg.DailyStatsMaxAge)); err != nil {
		errs = append(errs, fmt.Errorf("purge daily stats: %w", err))
	} else {
		counts["daily_stats"] = removed
	}
	if removed, err := j.outbox.DeletePublishedOlderThan(ctx, now.Add(-publishedEventMaxAge)); err != nil {
		errs = append(errs, fmt.Errorf("purge published events: %w", err))
	} else {
		counts["events"] = removed
	}

	logCtx := j.logg.WithFields(ctx, counts)
	j.logg.Info(logCtx, "retention cleanup complete")
	return multierr.Combine(errs...)
}
