package repository

import (
	"github.com/storepulse/storepulse/internal/pkg/recordstore"
)

// NewRepositories creates record-store-backed instances of all repositories.
// Callers inject the result where needed; there is deliberately no global
// factory so tests can swap implementations freely.
func NewRepositories(client *recordstore.Client) *Repositories {
	return &Repositories{
		Store:   NewStoreRepository(client),
		Webhook: NewWebhookRepository(client),
		Event:   NewEventRepository(client),
	}
}
