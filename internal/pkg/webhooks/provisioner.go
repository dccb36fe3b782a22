package webhooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/env"
	"github.com/storepulse/storepulse/internal/pkg/woo"
)

// Topics is the fixed set of upstream events every connected store gets.
var Topics = []string{"order.created", "order.updated"}

// Provisioner registers event subscriptions with the upstream store and
// records them. Each topic is handled independently: one failing topic never
// aborts the remaining ones, and there is no automatic retry. A failed
// topic stays undelivered until the user repeats the handshake.
type Provisioner struct {
	registry repository.WebhookRepository
	appName  string
	baseURL  string

	// newClient is swappable in tests.
	newClient func(woo.Credentials) *woo.Client
}

func NewProvisioner(registry repository.WebhookRepository) *Provisioner {
	return &Provisioner{
		registry:  registry,
		appName:   env.GetEnv("APP_NAME", "StorePulse"),
		baseURL:   strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"),
		newClient: woo.NewClient,
	}
}

// DeliveryURL returns the inbound endpoint the upstream store will call for
// a given store's events.
func (p *Provisioner) DeliveryURL(storeID string) string {
	return fmt.Sprintf("%s/api/v1/webhooks/store-events/%s", p.baseURL, storeID)
}

// Provision registers every topic sequentially and returns the successfully
// recorded registrations.
func (p *Provisioner) Provision(ctx context.Context, store *models.Store) []models.WebhookRegistration {
	client := p.newClient(woo.Credentials{
		StoreURL:       store.StoreURL,
		ConsumerKey:    store.ConsumerKey,
		ConsumerSecret: store.ConsumerSecret,
	})
	deliveryURL := p.DeliveryURL(store.ID)

	var created []models.WebhookRegistration
	for _, topic := range Topics {
		hook, err := client.CreateWebhook(ctx, fmt.Sprintf("%s %s", p.appName, topic), topic, deliveryURL)
		if err != nil {
			log.Errorf("[Webhooks] Failed to register %s for store %s: %v", topic, store.ID, err)
			continue
		}

		reg := models.WebhookRegistration{
			StoreID:     store.ID,
			WebhookID:   hook.ID,
			Topic:       topic,
			DeliveryURL: deliveryURL,
			Status:      hook.Status,
		}
		if err := p.registry.Create(ctx, &reg); err != nil {
			log.Errorf("[Webhooks] Registered %s upstream but failed to record it for store %s: %v", topic, store.ID, err)
			continue
		}
		created = append(created, reg)
	}
	return created
}
