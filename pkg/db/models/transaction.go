package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/types"
)

// ProofPayload is the seller-submitted delivery evidence stored on the
// transaction for high-value purchases.
type ProofPayload struct {
	Description string           `json:"description"`
	Links       types.StringList `json:"links"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// Transaction is one escrowed unit sale. ItemName and Price are snapshots
// taken at purchase time so later listing edits never rewrite history.
type Transaction struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ListingID      uuid.UUID               `gorm:"column:listing_id;type:uuid;not null;index"`
	BuyerID        string                  `gorm:"column:buyer_id;not null;index"`
	SellerID       string                  `gorm:"column:seller_id;not null;index"`
	ItemName       string                  `gorm:"column:item_name;not null"`
	Price          decimal.Decimal         `gorm:"column:price;type:numeric(12,2);not null"`
	Status         enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending_payment';index"`
	EscrowStage    enums.EscrowStage       `gorm:"column:escrow_stage;type:text;not null;default:'awaiting_payment'"`
	ThreadID       *string                 `gorm:"column:thread_id"`
	ReminderCount  int                     `gorm:"column:reminder_count;not null;default:0"`
	LastReminderAt *time.Time              `gorm:"column:last_reminder_at"`
	RequiresProof  bool                    `gorm:"column:requires_proof;not null;default:false"`
	ProofSubmitted bool                    `gorm:"column:proof_submitted;not null;default:false"`
	Proof          *ProofPayload           `gorm:"column:proof;type:jsonb;serializer:json"`
	DisputedAt     *time.Time              `gorm:"column:disputed_at"`
	DisputedBy     *string                 `gorm:"column:disputed_by"`
	CompletedAt    *time.Time              `gorm:"column:completed_at"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
