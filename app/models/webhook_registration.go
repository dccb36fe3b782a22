package models

import "time"

// WebhookRegistration records one event subscription provisioned on the
// upstream store. One row per topic per successful handshake; re-running a
// handshake creates additional rows.
type WebhookRegistration struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	WebhookID   int64     `json:"webhook_id"`
	Topic       string    `json:"topic"`
	DeliveryURL string    `json:"delivery_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
