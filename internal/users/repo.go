package users

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetMetrics(ctx context.Context, userID string) (*models.UserMetrics, error) {
	var metrics models.UserMetrics
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&metrics).Error
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (r *repository) EnsureMetrics(ctx context.Context, userID string) (*models.UserMetrics, error) {
	metrics := models.UserMetrics{
		UserID:       userID,
		TotalRevenue: decimal.Zero,
		TotalSpent:   decimal.Zero,
		Badges:       types.StringList{},
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&metrics).Error
	if err != nil {
		return nil, err
	}
	return r.GetMetrics(ctx, userID)
}

func (r *repository) ApplySale(ctx context.Context, sellerID string, amount decimal.Decimal, at time.Time) error {
	if _, err := r.EnsureMetrics(ctx, sellerID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
UPDATE user_metrics
SET total_sales = total_sales + 1,
    total_revenue = total_revenue + ?,
    first_sale_at = COALESCE(first_sale_at, ?),
    last_activity_at = ?,
    updated_at = ?
WHERE user_id = ?`, amount, at, at, at, sellerID).Error
}

func (r *repository) ApplyPurchase(ctx context.Context, buyerID string, amount decimal.Decimal, at time.Time) error {
	if _, err := r.EnsureMetrics(ctx, buyerID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
UPDATE user_metrics
SET total_purchases = total_purchases + 1,
    total_spent = total_spent + ?,
    last_activity_at = ?,
    updated_at = ?
WHERE user_id = ?`, amount, at, at, buyerID).Error
}

func (r *repository) TouchActivity(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.EnsureMetrics(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.UserMetrics{}).
		Where("user_id = ?", userID).
		Update("last_activity_at", at).Error
}

func (r *repository) InsertRating(ctx context.Context, rating *models.UserRating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *repository) ApplyRatingTotals(ctx context.Context, ratedID string, score int) error {
	if _, err := r.EnsureMetrics(ctx, ratedID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
UPDATE user_metrics
SET rating_sum = rating_sum + ?,
    rating_count = rating_count + 1
WHERE user_id = ?`, score, ratedID).Error
}

func (r *repository) SetBadges(ctx context.Context, userID string, badges []string) error {
	return r.db.WithContext(ctx).
		Model(&models.UserMetrics{}).
		Where("user_id = ?", userID).
		Update("badges", types.StringList(badges)).Error
}

func (r *repository) TopSellers(ctx context.Context, limit int) ([]models.UserMetrics, error) {
	var rows []models.UserMetrics
	err := r.db.WithContext(ctx).
		Where("total_sales > 0").
		Order("total_sales DESC").
		Order("total_revenue DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
