package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

// Event is a structured notification the core emits instead of formatting
// messages itself. Data must be JSON-serializable.
type Event struct {
	Type        enums.NotificationType
	RecipientID string
	Actor       string
	Data        interface{}
	OccurredAt  time.Time
}

// Dispatcher appends notification events to the outbox table inside the
// caller's transaction so the write commits or rolls back with the state
// change it announces.
type Dispatcher struct {
	repo *Repository
	logg *logger.Logger
}

func NewDispatcher(repo *Repository, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, logg: logg}
}

func (d *Dispatcher) Emit(ctx context.Context, tx *gorm.DB, event Event) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !event.Type.IsValid() {
		return errors.New("unknown notification type")
	}
	if event.RecipientID == "" {
		return errors.New("recipient required")
	}

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	envelope := Envelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       payload,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	row := models.NotificationEvent{
		ID:          uuid.New(),
		EventType:   event.Type,
		RecipientID: event.RecipientID,
		Payload:     json.RawMessage(payloadJSON),
	}
	if err := d.repo.Insert(tx, row); err != nil {
		return err
	}

	if d.logg != nil {
		fields := map[string]any{
			"event_id":   envelope.EventID,
			"event_type": event.Type,
			"recipient":  event.RecipientID,
		}
		d.logg.Info(d.logg.WithFields(ctx, fields), "notification event queued")
	}
	return nil
}
