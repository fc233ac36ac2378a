package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/pkg/types"
)

// UserMetrics holds running per-user totals. Rows are written only as a
// side effect of transaction completion, dispute resolution, and ratings.
type UserMetrics struct {
	UserID         string           `gorm:"column:user_id;primaryKey"`
	TotalSales     int              `gorm:"column:total_sales;not null;default:0"`
	TotalRevenue   decimal.Decimal  `gorm:"column:total_revenue;type:numeric(14,2);not null;default:0"`
	TotalPurchases int              `gorm:"column:total_purchases;not null;default:0"`
	TotalSpent     decimal.Decimal  `gorm:"column:total_spent;type:numeric(14,2);not null;default:0"`
	RatingSum      int              `gorm:"column:rating_sum;not null;default:0"`
	RatingCount    int              `gorm:"column:rating_count;not null;default:0"`
	Badges         types.StringList `gorm:"column:badges;type:jsonb"`
	FirstSaleAt    *time.Time       `gorm:"column:first_sale_at"`
	LastActivityAt *time.Time       `gorm:"column:last_activity_at"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// AverageRating returns the mean received rating, or zero when unrated.
func (m UserMetrics) AverageRating() decimal.Decimal {
	if m.RatingCount == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m.RatingSum)).
		Div(decimal.NewFromInt(int64(m.RatingCount))).
		Round(2)
}
