package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStat is one day's marketplace rollup produced by the stats job.
type DailyStat struct {
	Day               time.Time       `gorm:"column:day;primaryKey"`
	ListingsCreated   int             `gorm:"column:listings_created;not null;default:0"`
	ListingsApproved  int             `gorm:"column:listings_approved;not null;default:0"`
	PurchasesStarted  int             `gorm:"column:purchases_started;not null;default:0"`
	SalesCompleted    int             `gorm:"column:sales_completed;not null;default:0"`
	RevenueCompleted  decimal.Decimal `gorm:"column:revenue_completed;type:numeric(14,2);not null;default:0"`
	DisputesOpened    int             `gorm:"column:disputes_opened;not null;default:0"`
	DisputesResolved  int             `gorm:"column:disputes_resolved;not null;default:0"`
	ActiveListingsEOD int             `gorm:"column:active_listings_eod;not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
