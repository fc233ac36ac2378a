package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

const (
	lowStockScanBatch = 200
	lowStockAlertTTL  = 24 * time.Hour
)

// LowStockJobParams configure the low stock alert scan.
type LowStockJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Listings  lowStockReader
	Events    eventEmitter
	Dedupe    alertDeduper
	Threshold int
}

type lowStockReader interface {
	ListLowStock(ctx context.Context, threshold int, limit int) ([]models.Listing, error)
}

// alertDeduper suppresses repeat alerts. The Redis client satisfies it.
type alertDeduper interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// NewLowStockJob builds the cron job that warns sellers when a listing is
// nearly sold out. Alerts are deduplicated per listing so a seller is nudged
// at most once a day.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("notify dispatcher required")
	}
	if params.Dedupe == nil {
		return nil, fmt.Errorf("dedupe store required")
	}
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	return &lowStockJob{
		logg:      params.Logger,
		db:        params.DB,
		listings:  params.Listings,
		events:    params.Events,
		dedupe:    params.Dedupe,
		threshold: threshold,
		now:       time.Now,
	}, nil
}

type lowStockJob struct {
	logg      *logger.Logger
	db        txRunner
	listings  lowStockReader
	events    eventEmitter
	dedupe    alertDeduper
	threshold int
	now       func() time.Time
}

func (j *lowStockJob) Name() string { return "low-stock-alert" }

func (j *lowStockJob) Run(ctx context.Context) error {
	low, err := j.listings.ListLowStock(ctx, j.threshold, lowStockScanBatch)
	if err != nil {
		return fmt.Errorf("query low stock listings: %w", err)
	}
	alerted := 0
	for _, listing := range low {
		sent, err := j.alert(ctx, listing)
		if err != nil {
			return err
		}
		if sent {
			alerted++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"low": len(low), "alerted": alerted})
	j.logg.Info(logCtx, "low stock scan complete")
	return nil
}

func (j *lowStockJob) alert(ctx context.Context, listing models.Listing) (bool, error) {
	key := j.dedupe.IdempotencyKey("low-stock", listing.ID.String())
	fresh, err := j.dedupe.SetNX(ctx, key, listing.Quantity, lowStockAlertTTL)
	if err != nil {
		return false, fmt.Errorf("check low stock dedupe: %w", err)
	}
	if !fresh {
		return false, nil
	}
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return j.events.Emit(ctx, tx, notify.Event{
			Type:        enums.NotificationTypeListingLowStock,
			RecipientID: listing.SellerID,
			Actor:       "system",
			Data: LowStockAlert{
				ListingID: listing.ID,
				ItemName:  listing.ItemName,
				Quantity:  listing.Quantity,
			},
			OccurredAt: j.now().UTC(),
		})
	})
	if err != nil {
		return false, fmt.Errorf("emit low stock alert for %s: %w", listing.ID, err)
	}
	return true, nil
}

// LowStockAlert is the payload sellers receive when stock runs low.
type LowStockAlert struct {
	ListingID uuid.UUID `json:"listingId"`
	ItemName  string    `json:"itemName"`
	Quantity  int       `json:"quantity"`
}
