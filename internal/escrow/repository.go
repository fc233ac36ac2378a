package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Repository wires together transaction persistence helpers. Dispute and
// price-point rows created alongside a transition live here too so they share
// the caller's transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new transaction row.
func (r *Repository) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

// FindByID loads the transaction without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// UpdateStateIf advances status and escrow stage only when the current status
// matches one of the expected values. Extra column updates ride along in the
// same conditional write. Returns true when a row changed.
func (r *Repository) UpdateStateIf(ctx context.Context, id uuid.UUID, toStatus enums.TransactionStatus, toStage enums.EscrowStage, updates map[string]interface{}, fromStatuses ...enums.TransactionStatus) (bool, error) {
	values := map[string]interface{}{
		"status":       toStatus,
		"escrow_stage": toStage,
		"updated_at":   time.Now().UTC(),
	}
	for k, v := range updates {
		values[k] = v
	}
	from := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		from[i] = string(s)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkProofSubmitted stores the proof payload and advances the stage, guarded
// on both status and stage so a duplicate submit or a raced dispute loses.
func (r *Repository) MarkProofSubmitted(ctx context.Context, id uuid.UUID, proofJSON string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ? AND escrow_stage = ?",
			id, enums.TransactionStatusPendingDelivery, enums.EscrowStageAwaitingDelivery).
		Updates(map[string]interface{}{
			"escrow_stage":    enums.EscrowStageProofSubmitted,
			"proof_submitted": true,
			"proof":           proofJSON,
			"updated_at":      at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetThreadRef records the private thread opened for the two parties.
func (r *Repository) SetThreadRef(ctx context.Context, id uuid.UUID, threadID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("thread_id", threadID).
		Error
}

// IncrementReminder bumps the reminder bookkeeping while the transaction is
// still open and under the cap. Returns false once the cap is hit or the
// transaction went terminal.
func (r *Repository) IncrementReminder(ctx context.Context, id uuid.UUID, maxReminders int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status IN ? AND reminder_count < ?", id, openStatuses(), maxReminders).
		Updates(map[string]interface{}{
			"reminder_count":   gorm.Expr("reminder_count + 1"),
			"last_reminder_at": at,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListReminderDue returns open transactions quiet for longer than the
// staleness window, skipping those already at the reminder cap.
func (r *Repository) ListReminderDue(ctx context.Context, cutoff time.Time, maxReminders, limit int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status IN ? AND reminder_count < ?", openStatuses(), maxReminders).
		Where("created_at < ?", cutoff).
		Where("last_reminder_at IS NULL OR last_reminder_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListActiveForUser returns the open transactions a user participates in.
func (r *Repository) ListActiveForUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("(buyer_id = ? OR seller_id = ?)", userID, userID).
		Where("status IN ?", []string{
			string(enums.TransactionStatusPendingPayment),
			string(enums.TransactionStatusPendingDelivery),
			string(enums.TransactionStatusDisputed),
		}).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// CreateDispute inserts a dispute row.
func (r *Repository) CreateDispute(ctx context.Context, dispute *models.Dispute) (*models.Dispute, error) {
	if err := r.db.WithContext(ctx).Create(dispute).Error; err != nil {
		return nil, err
	}
	return dispute, nil
}

// CreatePricePoint records the observed sale price at completion.
func (r *Repository) CreatePricePoint(ctx context.Context, point *models.PricePoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

// OrphanedDecrement is a listing whose quantity deficit exceeds the units the
// escrow path claimed.
type OrphanedDecrement struct {
	ListingID uuid.UUID
	Missing   int
}

// ListOrphanedDecrements finds listings whose stock dropped outside the
// escrow path, outside the grace window. The check compares the quantity
// deficit against the listing's own units_sold counter rather than surviving
// transaction rows, so settled transactions aging out of retention never
// read as orphans.
func (r *Repository) ListOrphanedDecrements(ctx context.Context, cutoff time.Time) ([]OrphanedDecrement, error) {
	type row struct {
		ListingID uuid.UUID
		Missing   int
	}
	var rows []row
	err := r.db.WithContext(ctx).Raw(`
		SELECT id AS listing_id,
		       original_quantity - quantity - units_sold AS missing
		FROM listings
		WHERE status IN ('active', 'sold_out')
		  AND updated_at < ?
		  AND original_quantity - quantity > units_sold
	`, cutoff).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan orphaned decrements")
	}
	out := make([]OrphanedDecrement, 0, len(rows))
	for _, r := range rows {
		out = append(out, OrphanedDecrement{ListingID: r.ListingID, Missing: r.Missing})
	}
	return out, nil
}

// DeleteTerminalOlderThan removes long-settled transactions. Dispute and
// rating rows cascade with the delete; price points keep their denormalized
// snapshot. Returns the number of rows removed.
func (r *Repository) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{
			string(enums.TransactionStatusCompleted),
			string(enums.TransactionStatusCancelled),
			string(enums.TransactionStatusResolvedAdmin),
		}, cutoff).
		Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}

// RangeStats aggregates transaction activity inside a time window.
type RangeStats struct {
	Created   int64
	Completed int64
	Disputed  int64
	Revenue   decimal.Decimal
}

// StatsForRange tallies activity between from (inclusive) and to (exclusive)
// for the daily rollup.
func (r *Repository) StatsForRange(ctx context.Context, from, to time.Time) (*RangeStats, error) {
	stats := &RangeStats{Revenue: decimal.Zero}

	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&stats.Created).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?",
			enums.TransactionStatusCompleted, from, to).
		Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("disputed_at >= ? AND disputed_at < ?", from, to).
		Count(&stats.Disputed).Error; err != nil {
		return nil, err
	}

	type sumRow struct {
		Total decimal.Decimal
	}
	var sum sumRow
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(price), 0) AS total").
		Where("status = ? AND completed_at >= ? AND completed_at < ?",
			enums.TransactionStatusCompleted, from, to).
		Scan(&sum).Error; err != nil {
		return nil, err
	}
	stats.Revenue = sum.Total
	return stats, nil
}

func openStatuses() []string {
	return []string{
		string(enums.TransactionStatusPendingPayment),
		string(enums.TransactionStatusPendingDelivery),
	}
}
