package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

const listingSweepBatch = 200

// ListingSweepJobParams configure the listing lifecycle sweeper.
type ListingSweepJobParams struct {
	Logger   *logger.Logger
	Listings listingSweeper
	Config   config.MaintenanceConfig
}

type listingSweeper interface {
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error)
	ListSoldOutOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, to enums.ListingStatus, updates map[string]interface{}, from ...enums.ListingStatus) (bool, error)
}

// NewListingSweepJob builds the cron job that expires stale pending listings
// and archives sold-out ones nobody restocked.
func NewListingSweepJob(params ListingSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	return &listingSweepJob{
		logg:     params.Logger,
		listings: params.Listings,
		cfg:      params.Config,
		now:      time.Now,
	}, nil
}

type listingSweepJob struct {
	logg     *logger.Logger
	listings listingSweeper
	cfg      config.MaintenanceConfig
	now      func() time.Time
}

func (j *listingSweepJob) Name() string { return "listing-sweep" }

func (j *listingSweepJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.expirePending(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.archiveSoldOut(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *listingSweepJob) expirePending(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.cfg.PendingExpireAfter)
	stale, err := j.listings.ListPendingOlderThan(ctx, cutoff, listingSweepBatch)
	if err != nil {
		return fmt.Errorf("query stale pending listings: %w", err)
	}
	count := 0
	for _, listing := range stale {
		moved, err := j.listings.UpdateStatusIf(ctx, listing.ID, enums.ListingStatusExpired, nil, enums.ListingStatusPendingApproval)
		if err != nil {
			return fmt.Errorf("expire listing %s: %w", listing.ID, err)
		}
		if moved {
			count++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "pending listing expiration loop complete")
	return nil
}

func (j *listingSweepJob) archiveSoldOut(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.cfg.SoldOutArchiveAfter)
	stale, err := j.listings.ListSoldOutOlderThan(ctx, cutoff, listingSweepBatch)
	if err != nil {
		return fmt.Errorf("query stale sold-out listings: %w", err)
	}
	count := 0
	for _, listing := range stale {
		moved, err := j.listings.UpdateStatusIf(ctx, listing.ID, enums.ListingStatusArchived, nil, enums.ListingStatusSoldOut)
		if err != nil {
			return fmt.Errorf("archive listing %s: %w", listing.ID, err)
		}
		if moved {
			count++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "sold-out archive loop complete")
	return nil
}
