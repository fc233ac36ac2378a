package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Zymart/shopbot-backend/internal/escrow"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// StatsRollupJobParams configure the daily rollup writer.
type StatsRollupJobParams struct {
	Logger   *logger.Logger
	Escrow   escrowStatsReader
	Listings listingStatsReader
	Disputes disputeStatsReader
	Events   eventCounter
	Stats    dailyStatWriter
}

type escrowStatsReader interface {
	StatsForRange(ctx context.Context, from, to time.Time) (*escrow.RangeStats, error)
}

type listingStatsReader interface {
	CountCreatedInRange(ctx context.Context, from, to time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[enums.ListingStatus]int64, error)
}

type disputeStatsReader interface {
	CountResolvedInRange(ctx context.Context, from, to time.Time) (int64, error)
}

type eventCounter interface {
	CountTypeInRange(ctx context.Context, eventType enums.NotificationType, from, to time.Time) (int64, error)
}

type dailyStatWriter interface {
	UpsertDailyStat(ctx context.Context, stat *models.DailyStat) error
}

// NewStatsRollupJob builds the cron job that folds yesterday's activity into
// one daily_stats row. Re-running a day overwrites the earlier row.
func NewStatsRollupJob(params StatsRollupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Escrow == nil {
		return nil, fmt.Errorf("escrow repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Disputes == nil {
		return nil, fmt.Errorf("disputes repository required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("notify repository required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	return &statsRollupJob{
		logg:     params.Logger,
		escrow:   params.Escrow,
		listings: params.Listings,
		disputes: params.Disputes,
		events:   params.Events,
		stats:    params.Stats,
		now:      time.Now,
	}, nil
}

type statsRollupJob struct {
	logg     *logger.Logger
	escrow   escrowStatsReader
	listings listingStatsReader
	disputes disputeStatsReader
	events   eventCounter
	stats    dailyStatWriter
	now      func() time.Time
}

func (j *statsRollupJob) Name() string { return "daily-stats-rollup" }

func (j *statsRollupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	from, to := day, day.AddDate(0, 0, 1)

	ranged, err := j.escrow.StatsForRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("roll up transactions: %w", err)
	}
	created, err := j.listings.CountCreatedInRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("count created listings: %w", err)
	}
	approved, err := j.events.CountTypeInRange(ctx, enums.NotificationTypeListingApproved, from, to)
	if err != nil {
		return fmt.Errorf("count approved listings: %w", err)
	}
	resolved, err := j.disputes.CountResolvedInRange(ctx, from, to)
	if err != nil {
		return fmt.Errorf("count resolved disputes: %w", err)
	}
	byStatus, err := j.listings.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("count listings by status: %w", err)
	}

	stat := &models.DailyStat{
		Day:               day,
		ListingsCreated:   int(created),
		ListingsApproved:  int(approved),
		PurchasesStarted:  int(ranged.Created),
		SalesCompleted:    int(ranged.Completed),
		RevenueCompleted:  ranged.Revenue,
		DisputesOpened:    int(ranged.Disputed),
		DisputesResolved:  int(resolved),
		ActiveListingsEOD: int(byStatus[enums.ListingStatusActive]),
	}
	if err := j.stats.UpsertDailyStat(ctx, stat); err != nil {
		return fmt.Errorf("write daily stat: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"day":       day.Format("2006-01-02"),
		"purchases": stat.PurchasesStarted,
		"sales":     stat.SalesCompleted,
		"revenue":   stat.RevenueCompleted.String(),
	})
	j.logg.Info(logCtx, "daily rollup written")
	return nil
}
