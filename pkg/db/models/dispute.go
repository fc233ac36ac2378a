package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// Dispute freezes its parent transaction until an admin rules on it.
type Dispute struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID  uuid.UUID                `gorm:"column:transaction_id;type:uuid;not null;index"`
	ItemName       string                   `gorm:"column:item_name;not null"`
	BuyerID        string                   `gorm:"column:buyer_id;not null"`
	SellerID       string                   `gorm:"column:seller_id;not null"`
	OpenedBy       string                   `gorm:"column:opened_by;not null"`
	Reason         string                   `gorm:"column:reason;not null"`
	Priority       enums.DisputePriority    `gorm:"column:priority;type:text;not null;default:'normal'"`
	Status         enums.DisputeStatus      `gorm:"column:status;type:text;not null;default:'open';index"`
	Resolution     *enums.DisputeResolution `gorm:"column:resolution;type:text"`
	ResolutionNote *string                  `gorm:"column:resolution_note"`
	ResolvedBy     *string                  `gorm:"column:resolved_by"`
	ResolvedAt     *time.Time               `gorm:"column:resolved_at"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
