package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// Report is a user-filed complaint against another user, optionally tied
// to a transaction.
type Report struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ReporterID    string             `gorm:"column:reporter_id;not null"`
	ReportedID    string             `gorm:"column:reported_id;not null;index"`
	TransactionID *uuid.UUID         `gorm:"column:transaction_id;type:uuid"`
	Reason        string             `gorm:"column:reason;not null"`
	Status        enums.ReportStatus `gorm:"column:status;type:text;not null;default:'open';index"`
	ReviewedBy    *string            `gorm:"column:reviewed_by"`
	ReviewedAt    *time.Time         `gorm:"column:reviewed_at"`
	ReviewNote    *string            `gorm:"column:review_note"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
