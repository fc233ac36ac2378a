package users

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
)

// Repository defines persistence operations for user aggregate tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetMetrics(ctx context.Context, userID string) (*models.UserMetrics, error)
	EnsureMetrics(ctx context.Context, userID string) (*models.UserMetrics, error)
	ApplySale(ctx context.Context, sellerID string, amount decimal.Decimal, at time.Time) error
	ApplyPurchase(ctx context.Context, buyerID string, amount decimal.Decimal, at time.Time) error
	TouchActivity(ctx context.Context, userID string, at time.Time) error
	InsertRating(ctx context.Context, rating *models.UserRating) error
	ApplyRatingTotals(ctx context.Context, ratedID string, score int) error
	SetBadges(ctx context.Context, userID string, badges []string) error
	TopSellers(ctx context.Context, limit int) ([]models.UserMetrics, error)
}
