package repository

import (
	"context"

	"github.com/storepulse/storepulse/app/models"
)

// StoreRepository defines the store-row operations this service needs. Rows
// live in the external record service; the implementation only reads and
// writes through its HTTP interface.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetByAppUserID(ctx context.Context, appUserID string) (*models.Store, error)
	SaveCredentials(ctx context.Context, id, storeURL, consumerKey, consumerSecret, keyID string) error
	SaveRazorpayCredentials(ctx context.Context, id, razorpayKeyID, razorpaySecretEnc string) error
	SetRazorpaySkipped(ctx context.Context, id string) error
}

// WebhookRepository records provisioned upstream webhooks.
type WebhookRepository interface {
	Create(ctx context.Context, reg *models.WebhookRegistration) error
	GetByStoreID(ctx context.Context, storeID string) ([]models.WebhookRegistration, error)
}

// EventRepository appends inbound store events. Events are never mutated.
type EventRepository interface {
	Create(ctx context.Context, event *models.NotificationEvent) error
	GetByStoreID(ctx context.Context, storeID string, limit int) ([]models.NotificationEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Store   StoreRepository
	Webhook WebhookRepository
	Event   EventRepository
}
