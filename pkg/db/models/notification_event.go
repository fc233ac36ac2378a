package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// NotificationEvent is an append-only outbox row written in the same
// transaction as the state change it announces. A separate publisher
// drains unpublished rows to Pub/Sub.
type NotificationEvent struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	EventType    enums.NotificationType `gorm:"column:event_type;type:text;not null"`
	RecipientID  string                 `gorm:"column:recipient_id;not null"`
	Payload      json.RawMessage        `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	PublishedAt  *time.Time             `gorm:"column:published_at;index"`
	AttemptCount int                    `gorm:"column:attempt_count;not null;default:0"`
	LastError    *string                `gorm:"column:last_error"`
}
