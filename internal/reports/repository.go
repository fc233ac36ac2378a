package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// Repository wires together report persistence helpers.
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

// Create inserts a new report row.
func (r *Repository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// FindByID loads the report without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// Close moves an open report into reviewed or dismissed. Returns true when a
// row changed.
func (r *Repository) Close(ctx context.Context, id uuid.UUID, to enums.ReportStatus, reviewedBy string, note *string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND status = ?", id, enums.ReportStatusOpen).
		Updates(map[string]interface{}{
			"status":      to,
			"reviewed_by": reviewedBy,
			"review_note": note,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListOpen returns unreviewed reports oldest first.
func (r *Repository) ListOpen(ctx context.Context, limit int) ([]models.Report, error) {
	var rows []models.Report
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ReportStatusOpen).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// CountAgainst counts open and reviewed reports filed against a user, which
// feeds the admin's trust view of a seller.
func (r *Repository) CountAgainst(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("reported_id = ? AND status <> ?", userID, enums.ReportStatusDismissed).
		Count(&count).
		Error
	return count, err
}
