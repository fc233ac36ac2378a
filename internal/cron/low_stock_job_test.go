package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
)

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type recordingEventEmitter struct {
	events []notify.Event
}

func (r *recordingEventEmitter) Emit(_ context.Context, tx *gorm.DB, event notify.Event) error {
	if tx == nil {
		panic("emit outside transaction")
	}
	r.events = append(r.events, event)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (f *fakeDeduper) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeDeduper) IdempotencyKey(scope, id string) string {
	return "test:idem:" + scope + ":" + id
}

type fakeLowStockReader struct {
	threshold int
	listings  []models.Listing
}

func (f *fakeLowStockReader) ListLowStock(_ context.Context, threshold int, _ int) ([]models.Listing, error) {
	f.threshold = threshold
	return f.listings, nil
}

func TestLowStockJobAlertsSellerOnce(t *testing.T) {
	listing := models.Listing{
		ID:       uuid.New(),
		SellerID: "seller-9",
		ItemName: "Neon Crow",
		Quantity: 2,
	}
	reader := &fakeLowStockReader{listings: []models.Listing{listing}}
	emitter := &recordingEventEmitter{}
	job, err := NewLowStockJob(LowStockJobParams{
		Logger:    testLogger(),
		DB:        &fakeTxRunner{},
		Listings:  reader,
		Events:    emitter,
		Dedupe:    &fakeDeduper{},
		Threshold: 3,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if reader.threshold != 3 {
		t.Fatalf("threshold = %d, want 3", reader.threshold)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.Type != enums.NotificationTypeListingLowStock {
		t.Fatalf("event type = %s", event.Type)
	}
	if event.RecipientID != "seller-9" {
		t.Fatalf("recipient = %s", event.RecipientID)
	}
	payload, ok := event.Data.(LowStockAlert)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.Quantity != 2 || payload.ListingID != listing.ID {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	// Second scan inside the dedupe window stays quiet.
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected dedupe to suppress the repeat alert, got %d events", len(emitter.events))
	}
}
