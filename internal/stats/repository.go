package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// Repository persists daily rollups and reads price history aggregates.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertDailyStat writes one day's rollup, replacing any earlier run for the
// same day so the job can be re-run safely.
func (r *Repository) UpsertDailyStat(ctx context.Context, stat *models.DailyStat) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}},
			UpdateAll: true,
		}).
		Create(stat).Error
}

// ListDays returns rollups for days at or after since, oldest first.
func (r *Repository) ListDays(ctx context.Context, since time.Time) ([]models.DailyStat, error) {
	var rows []models.DailyStat
	err := r.db.WithContext(ctx).
		Where("day >= ?", since).
		Order("day ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteOlderThan removes rollups for days before cutoff. Returns the number
// of rows removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("day < ?", cutoff).
		Delete(&models.DailyStat{})
	return res.RowsAffected, res.Error
}

// CategoryTrend summarizes completed sale prices for one category.
type CategoryTrend struct {
	Category enums.ListingCategory `gorm:"column:category"`
	Sales    int64                 `gorm:"column:sales"`
	AvgPrice decimal.Decimal       `gorm:"column:avg_price"`
	MinPrice decimal.Decimal       `gorm:"column:min_price"`
	MaxPrice decimal.Decimal       `gorm:"column:max_price"`
}

// CategoryTrends aggregates price points recorded at or after since, one row
// per category, busiest categories first.
func (r *Repository) CategoryTrends(ctx context.Context, since time.Time) ([]CategoryTrend, error) {
	var rows []CategoryTrend
	err := r.db.WithContext(ctx).
		Model(&models.PricePoint{}).
		Select("category, COUNT(*) AS sales, AVG(price) AS avg_price, MIN(price) AS min_price, MAX(price) AS max_price").
		Where("recorded_at >= ?", since).
		Group("category").
		Order("sales DESC").
		Scan(&rows).Error
	return rows, err
}
