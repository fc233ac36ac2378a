package disputes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// Repository wires together dispute persistence helpers plus the one
// transaction write resolution needs.
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

// FindByID loads the dispute without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := r.db.WithContext(ctx).First(&dispute, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

// MarkResolved closes an open dispute with the admin's ruling. Returns true
// when a row changed.
func (r *Repository) MarkResolved(ctx context.Context, id uuid.UUID, resolvedBy string, outcome enums.DisputeResolution, note *string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("id = ? AND status = ?", id, enums.DisputeStatusOpen).
		Updates(map[string]interface{}{
			"status":          enums.DisputeStatusResolved,
			"resolution":      outcome,
			"resolution_note": note,
			"resolved_by":     resolvedBy,
			"resolved_at":     at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SettleTransaction moves the parent transaction out of disputed into the
// admin-ruled terminal state.
func (r *Repository) SettleTransaction(ctx context.Context, transactionID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transactionID, enums.TransactionStatusDisputed).
		Updates(map[string]interface{}{
			"status":     enums.TransactionStatusResolvedAdmin,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListOpen returns unresolved disputes, high priority first, oldest first
// within a priority band.
func (r *Repository) ListOpen(ctx context.Context, limit int) ([]models.Dispute, error) {
	var rows []models.Dispute
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.DisputeStatusOpen).
		Order("CASE priority WHEN 'high' THEN 0 ELSE 1 END").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// CountOpen returns the open dispute backlog size.
// CountResolvedInRange counts disputes resolved inside [from, to).
func (r *Repository) CountResolvedInRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("status = ? AND resolved_at >= ? AND resolved_at < ?", enums.DisputeStatusResolved, from, to).
		Count(&count).
		Error
	return count, err
}

func (r *Repository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("status = ?", enums.DisputeStatusOpen).
		Count(&count).
		Error
	return count, err
}
