package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/types"
)

// Listing is a seller's marketplace post. Quantity only moves through the
// listing service's conditional updates; price never changes after creation.
// UnitsSold counts units claimed through the escrow path, so a quantity
// deficit it cannot explain marks the listing for stock reconciliation.
type Listing struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	SellerID         string                `gorm:"column:seller_id;not null;index"`
	ItemName         string                `gorm:"column:item_name;not null"`
	Category         enums.ListingCategory `gorm:"column:category;type:text;not null;default:'other'"`
	Tags             types.StringList      `gorm:"column:tags;type:jsonb"`
	Price            decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity         int                   `gorm:"column:quantity;not null"`
	OriginalQuantity int                   `gorm:"column:original_quantity;not null"`
	UnitsSold        int                   `gorm:"column:units_sold;not null;default:0"`
	Description      string                `gorm:"column:description"`
	DeliveryTime     string                `gorm:"column:delivery_time"`
	Status           enums.ListingStatus   `gorm:"column:status;type:text;not null;default:'pending_approval';index"`
	Views            int                   `gorm:"column:views;not null;default:0"`
	ChannelID        *string               `gorm:"column:channel_id"`
	MessageID        *string               `gorm:"column:message_id"`
	ApprovedBy       *string               `gorm:"column:approved_by"`
	RejectedReason   *string               `gorm:"column:rejected_reason"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
