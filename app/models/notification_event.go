package models

import (
	"encoding/json"
	"time"
)

// NotificationEvent is the append-only history row written for every inbound
// store event. The payload is kept as the opaque blob the upstream sent.
type NotificationEvent struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	Topic     string          `json:"topic"`
	Resource  string          `json:"resource"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
