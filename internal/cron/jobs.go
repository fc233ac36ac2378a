package cron

import (
	"context"

	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/internal/notify"
)

// txRunner runs a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// eventEmitter appends a notification to the outbox within tx.
type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event notify.Event) error
}
