package notify

import (
	"encoding/json"
	"time"
)

// Envelope is the stable payload structure stored in notification_events
// and published to Pub/Sub verbatim.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      string          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
