package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// PricePoint records the sale price observed when a transaction completes,
// feeding the category trend rollup.
type PricePoint struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Category      enums.ListingCategory `gorm:"column:category;type:text;not null;index"`
	ItemName      string                `gorm:"column:item_name;not null"`
	Price         decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	TransactionID uuid.UUID             `gorm:"column:transaction_id;type:uuid;not null"`
	RecordedAt    time.Time             `gorm:"column:recorded_at;not null;index"`
}
