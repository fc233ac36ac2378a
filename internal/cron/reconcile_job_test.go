package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/escrow"
)

type fakeOrphanReader struct {
	cutoff  time.Time
	orphans []escrow.OrphanedDecrement
}

func (f *fakeOrphanReader) ListOrphanedDecrements(_ context.Context, cutoff time.Time) ([]escrow.OrphanedDecrement, error) {
	f.cutoff = cutoff
	return f.orphans, nil
}

type fakeStockRepairer struct {
	restored map[uuid.UUID]int
}

func (f *fakeStockRepairer) RepairStock(_ context.Context, id uuid.UUID, qty int) (bool, error) {
	if f.restored == nil {
		f.restored = map[uuid.UUID]int{}
	}
	f.restored[id] += qty
	return true, nil
}

func TestReconcileJobRestoresMissingUnits(t *testing.T) {
	orphanID := uuid.New()
	reader := &fakeOrphanReader{
		orphans: []escrow.OrphanedDecrement{
			{ListingID: orphanID, Missing: 2},
			{ListingID: uuid.New(), Missing: 0},
		},
	}
	restorer := &fakeStockRepairer{}
	job, err := NewReconcileJob(ReconcileJobParams{
		Logger: testLogger(),
		DB:     &fakeTxRunner{},
		Escrow: reader,
		RepoFactory: func(tx *gorm.DB) stockRepairer {
			if tx == nil {
				t.Fatalf("repo factory called outside transaction")
			}
			return restorer
		},
		Grace: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	job.(*reconcileJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reader.cutoff.Equal(now.Add(-15 * time.Minute)) {
		t.Fatalf("cutoff = %v", reader.cutoff)
	}
	if len(restorer.restored) != 1 {
		t.Fatalf("expected 1 listing restored, got %d", len(restorer.restored))
	}
	if restorer.restored[orphanID] != 2 {
		t.Fatalf("restored %d units, want 2", restorer.restored[orphanID])
	}
}
