package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

func TestPurchaseClaimsStockAndOpensThread(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	listing := f.seedActiveListing(t, "seller-1", 20, 3)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusPendingPayment, transaction.Status)
	assert.Equal(t, enums.EscrowStageAwaitingPayment, transaction.EscrowStage)
	assert.False(t, transaction.RequiresProof)
	assert.True(t, transaction.Price.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, transaction.ThreadID)
	assert.Equal(t, "thread-1", *transaction.ThreadID)
	assert.Equal(t, 1, f.threads.calls)

	got, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, enums.ListingStatusActive, got.Status)

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, enums.NotificationTypePurchaseCreated, f.emitter.events[0].Type)
	assert.Equal(t, "seller-1", f.emitter.events[0].RecipientID)
}

func TestPurchaseRejectsSelfPurchase(t *testing.T) {
	f := newEscrowFixture(t)
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	_, err := f.svc.Purchase(context.Background(), listing.ID, "seller-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeSelfPurchase))
}

func TestPurchaseLastUnitLoserGetsOutOfStock(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	_, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)

	got, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusSoldOut, got.Status)

	// Second buyer read the listing as active a moment earlier; the
	// conditional decrement is what turns them away.
	require.NoError(t, f.conn.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Update("status", enums.ListingStatusActive).Error)
	require.NoError(t, f.conn.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Update("quantity", 0).Error)

	_, err = f.svc.Purchase(ctx, listing.ID, "buyer-2")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock))

	var count int64
	require.NoError(t, f.conn.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "loser must not leave a phantom transaction")
}

func TestLowValueFlowCompletesAndCreditsOnce(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 3)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	assert.False(t, transaction.RequiresProof)

	_, err = f.svc.ConfirmPayment(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)

	completed, err := f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, completed.Status)
	assert.Equal(t, enums.EscrowStageCompleted, completed.EscrowStage)
	require.NotNil(t, completed.CompletedAt)

	seller, err := f.userRepo.GetMetrics(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seller.TotalSales)
	assert.True(t, seller.TotalRevenue.Equal(decimal.NewFromInt(20)))

	buyer, err := f.userRepo.GetMetrics(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 1, buyer.TotalPurchases)

	// Completion is one-shot.
	_, err = f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyCompleted))

	seller, err = f.userRepo.GetMetrics(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seller.TotalSales, "double confirm must not double credit")

	var points int64
	require.NoError(t, f.conn.Model(&models.PricePoint{}).Count(&points).Error)
	assert.Equal(t, int64(1), points)
}

func TestHighValueFlowEnforcesProofGate(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 75, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-2")
	require.NoError(t, err)
	assert.True(t, transaction.RequiresProof)

	_, err = f.svc.ConfirmPayment(ctx, transaction.ID, "buyer-2")
	require.NoError(t, err)

	_, err = f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-2")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.SubmitProof(ctx, transaction.ID, "seller-1", "delivered in game", []string{"https://imgur.com/a/proof"})
	require.NoError(t, err)

	updated, err := f.svc.Get(ctx, transaction.ID)
	require.NoError(t, err)
	assert.True(t, updated.ProofSubmitted)
	assert.Equal(t, enums.EscrowStageProofSubmitted, updated.EscrowStage)
	require.NotNil(t, updated.Proof)
	assert.Equal(t, "delivered in game", updated.Proof.Description)

	completed, err := f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-2")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, completed.Status)

	got, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusSoldOut, got.Status)
}

func TestSubmitProofGuards(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	cheap := f.seedActiveListing(t, "seller-1", 20, 1)
	cheapTx, err := f.svc.Purchase(ctx, cheap.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, cheapTx.ID, "buyer-1")
	require.NoError(t, err)

	_, err = f.svc.SubmitProof(ctx, cheapTx.ID, "seller-1", "proof", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	dear := f.seedActiveListing(t, "seller-1", 75, 1)
	dearTx, err := f.svc.Purchase(ctx, dear.ID, "buyer-1")
	require.NoError(t, err)

	// Proof before payment confirmation is premature.
	_, err = f.svc.SubmitProof(ctx, dearTx.ID, "seller-1", "proof", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.ConfirmPayment(ctx, dearTx.ID, "buyer-1")
	require.NoError(t, err)

	_, err = f.svc.SubmitProof(ctx, dearTx.ID, "buyer-1", "proof", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.SubmitProof(ctx, dearTx.ID, "seller-1", "proof", nil)
	require.NoError(t, err)

	_, err = f.svc.SubmitProof(ctx, dearTx.ID, "seller-1", "proof again", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestOpenDisputeFreezesTransaction(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 120, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)

	_, err = f.svc.OpenDispute(ctx, transaction.ID, "stranger", "where is my item")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	dispute, err := f.svc.OpenDispute(ctx, transaction.ID, "buyer-1", "never delivered")
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, enums.DisputePriorityHigh, dispute.Priority, "price above 100 is high priority")

	frozen, err := f.svc.Get(ctx, transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusDisputed, frozen.Status)
	assert.Equal(t, enums.EscrowStageDisputed, frozen.EscrowStage)
	require.NotNil(t, frozen.DisputedBy)
	assert.Equal(t, "buyer-1", *frozen.DisputedBy)

	_, err = f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.SubmitProof(ctx, transaction.ID, "seller-1", "proof", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.OpenDispute(ctx, transaction.ID, "seller-1", "counter dispute")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestDisputePriorityNormalAtOrBelowThreshold(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 100, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)

	dispute, err := f.svc.OpenDispute(ctx, transaction.ID, "seller-1", "buyer ghosted")
	require.NoError(t, err)
	assert.Equal(t, enums.DisputePriorityNormal, dispute.Priority)
}

func TestSendReminderCapsAtThree(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f.advanceClock(25 * time.Hour)
		require.NoError(t, f.svc.SendReminder(ctx, transaction.ID))
	}

	got, err := f.svc.Get(ctx, transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.ReminderCount)

	err = f.svc.SendReminder(ctx, transaction.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	// Reminders while awaiting payment go to the buyer.
	reminderEvents := 0
	for _, ev := range f.emitter.events {
		if ev.Type == enums.NotificationTypeReminderDue {
			reminderEvents++
			assert.Equal(t, "buyer-1", ev.RecipientID)
		}
	}
	assert.Equal(t, 3, reminderEvents)
}

func TestEmergencyStopHaltsAnyOpenTransaction(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)

	stopped, err := f.svc.EmergencyStop(ctx, transaction.ID, "admin-1", "scam pattern")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusEmergencyStopped, stopped.Status)

	_, err = f.svc.EmergencyStop(ctx, transaction.ID, "admin-1", "again")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	stops := 0
	for _, ev := range f.emitter.events {
		if ev.Type == enums.NotificationTypeEmergencyStop {
			stops++
		}
	}
	assert.Equal(t, 2, stops, "both parties are told")
}

func TestCancelPendingRestoresStock(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)

	sold, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusSoldOut, sold.Status)

	cancelled, err := f.svc.CancelPending(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCancelled, cancelled.Status)

	restored, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Quantity)
	assert.Equal(t, enums.ListingStatusActive, restored.Status)

	_, err = f.svc.CancelPending(ctx, transaction.ID, "buyer-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelAfterPaymentIsRefused(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)

	_, err = f.svc.CancelPending(ctx, transaction.ID, "buyer-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelPendingSucceedsWhenListingWentTerminal(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 1)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		UpdateColumn("status", enums.ListingStatusArchived).Error)

	// The unit has nowhere to go back to, but the cancel must still land.
	cancelled, err := f.svc.CancelPending(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCancelled, cancelled.Status)

	got, err := f.listingRepo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, enums.ListingStatusArchived, got.Status)
}

func TestRateRequiresCompletedTransaction(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 2)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)

	err = f.svc.Rate(ctx, transaction.ID, "buyer-1", 5, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.ConfirmPayment(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Rate(ctx, transaction.ID, "buyer-1", 5, nil))

	seller, err := f.userRepo.GetMetrics(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 1, seller.RatingCount)
	assert.Equal(t, 5, seller.RatingSum)

	err = f.svc.Rate(ctx, transaction.ID, "stranger", 1, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestReminderScanQuery(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 3)

	stale, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	fresh, err := f.svc.Purchase(ctx, listing.ID, "buyer-2")
	require.NoError(t, err)
	_ = fresh

	old := time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, f.conn.Model(&models.Transaction{}).
		Where("id = ?", stale.ID).
		UpdateColumn("created_at", old).Error)

	due, err := f.repo.ListReminderDue(ctx, time.Now().UTC().Add(-24*time.Hour), 3, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, stale.ID, due[0].ID)
}

func TestListOrphanedDecrements(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	// A listing whose stock moved with no surviving transaction.
	orphan := f.seedActiveListing(t, "seller-1", 20, 2)
	require.NoError(t, f.conn.Model(&models.Listing{}).
		Where("id = ?", orphan.ID).
		UpdateColumns(map[string]interface{}{
			"quantity":   1,
			"updated_at": time.Now().UTC().Add(-time.Hour),
		}).Error)

	// A healthy listing: one unit sold, one transaction.
	healthy := f.seedActiveListing(t, "seller-1", 20, 2)
	_, err := f.svc.Purchase(ctx, healthy.ID, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Listing{}).
		Where("id = ?", healthy.ID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-time.Hour)).Error)

	orphans, err := f.repo.ListOrphanedDecrements(ctx, time.Now().UTC().Add(-15*time.Minute))
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ListingID)
	assert.Equal(t, 1, orphans[0].Missing)
}

func TestListOrphanedDecrementsIgnoresPurgedSales(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	// Three units sold through escrow; the settled transactions have since
	// aged out of retention. The deficit is fully explained by units_sold,
	// so nothing may be restored.
	listing := f.seedActiveListing(t, "seller-1", 20, 5)
	for _, buyer := range []string{"buyer-1", "buyer-2", "buyer-3"} {
		transaction, err := f.svc.Purchase(ctx, listing.ID, buyer)
		require.NoError(t, err)
		_, err = f.svc.ConfirmPayment(ctx, transaction.ID, buyer)
		require.NoError(t, err)
		_, err = f.svc.ConfirmDelivery(ctx, transaction.ID, buyer)
		require.NoError(t, err)
	}
	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	require.NoError(t, f.conn.Model(&models.Transaction{}).
		Where("listing_id = ?", listing.ID).
		UpdateColumn("updated_at", old).Error)
	removed, err := f.repo.DeleteTerminalOlderThan(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(3), removed)
	require.NoError(t, f.conn.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-time.Hour)).Error)

	orphans, err := f.repo.ListOrphanedDecrements(ctx, time.Now().UTC().Add(-15*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestDeleteTerminalOlderThanSurvivesChildRows(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()

	listing := f.seedActiveListing(t, "seller-1", 20, 2)

	settled, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, settled.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, settled.ID, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Rate(ctx, settled.ID, "buyer-1", 5, nil))

	recent, err := f.svc.Purchase(ctx, listing.ID, "buyer-2")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, recent.ID, "buyer-2")
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, recent.ID, "buyer-2")
	require.NoError(t, err)

	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	require.NoError(t, f.conn.Model(&models.Transaction{}).
		Where("id = ?", settled.ID).
		UpdateColumn("updated_at", old).Error)

	// The purge must get past the rating row riding on the settled
	// transaction; the price point stays behind as a snapshot.
	removed, err := f.repo.DeleteTerminalOlderThan(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var txCount int64
	require.NoError(t, f.conn.Model(&models.Transaction{}).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)

	var ratingCount int64
	require.NoError(t, f.conn.Model(&models.UserRating{}).
		Where("transaction_id = ?", settled.ID).Count(&ratingCount).Error)
	assert.Equal(t, int64(0), ratingCount)

	var priceCount int64
	require.NoError(t, f.conn.Model(&models.PricePoint{}).
		Where("transaction_id = ?", settled.ID).Count(&priceCount).Error)
	assert.Equal(t, int64(1), priceCount)
}

func TestStatsForRange(t *testing.T) {
	f := newEscrowFixture(t)
	ctx := context.Background()
	listing := f.seedActiveListing(t, "seller-1", 20, 3)

	transaction, err := f.svc.Purchase(ctx, listing.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, transaction.ID, "buyer-1")
	require.NoError(t, err)

	other, err := f.svc.Purchase(ctx, listing.ID, "buyer-2")
	require.NoError(t, err)
	_, err = f.svc.OpenDispute(ctx, other.ID, "buyer-2", "no delivery")
	require.NoError(t, err)

	now := time.Now().UTC()
	stats, err := f.repo.StatsForRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Created)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Disputed)
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(20)), "revenue %s", stats.Revenue)
}
