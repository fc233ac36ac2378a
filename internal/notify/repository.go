package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event models.NotificationEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&event).Error
}

// FetchUnpublishedTx returns pending rows ordered oldest-first, skipping
// rows that exhausted their publish attempts.
func (r *Repository) FetchUnpublishedTx(tx *gorm.DB, limit, maxAttempts int) ([]models.NotificationEvent, error) {
	var rows []models.NotificationEvent
	err := tx.Where("published_at IS NULL").
		Where("attempt_count < ?", maxAttempts).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&models.NotificationEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"published_at": time.Now(),
		}).Error
}

func (r *Repository) MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error) error {
	return tx.Model(&models.NotificationEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":    cause.Error(),
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}

// DeletePublishedOlderThan removes published rows older than cutoff. The
// outbox is a delivery queue, not an archive.
func (r *Repository) DeletePublishedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("published_at IS NOT NULL AND published_at < ?", cutoff).
		Delete(&models.NotificationEvent{})
	return res.RowsAffected, res.Error
}

// CountTypeInRange counts events of one type created inside [from, to).
// The outbox doubles as an activity log while rows are retained, which is
// long enough for the daily rollup.
func (r *Repository) CountTypeInRange(ctx context.Context, eventType enums.NotificationType, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationEvent{}).
		Where("event_type = ? AND created_at >= ? AND created_at < ?", eventType, from, to).
		Count(&count).Error
	return count, err
}

// CountUnpublished reports the current backlog outside any transaction.
func (r *Repository) CountUnpublished() (int64, error) {
	var count int64
	err := r.db.Model(&models.NotificationEvent{}).
		Where("published_at IS NULL").
		Count(&count).Error
	return count, err
}
