package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRating is a single 1-5 score left by one party of a completed
// transaction for the other. One rating per rater per transaction.
type UserRating struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex:idx_ratings_tx_rater"`
	RaterID       string    `gorm:"column:rater_id;not null;uniqueIndex:idx_ratings_tx_rater"`
	RatedID       string    `gorm:"column:rated_id;not null;index"`
	Score         int       `gorm:"column:score;not null"`
	Comment       *string   `gorm:"column:comment"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
