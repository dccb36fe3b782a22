package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/push"
)

// PushQueue accepts fan-out work for a store's subscriptions.
type PushQueue interface {
	Enqueue(storeID string, subs []models.PushSubscription, payload push.Payload)
}

// WebhookController ingests event deliveries from upstream stores and fans
// them out to registered push subscriptions. Ingestion always acknowledges
// with 200 so the upstream never disables the webhook over our own failures.
type WebhookController struct {
	stores   repository.StoreRepository
	registry repository.WebhookRepository
	events   repository.EventRepository
	subs     push.SubscriptionStore
	queue    PushQueue
}

func NewWebhookController(stores repository.StoreRepository, registry repository.WebhookRepository, events repository.EventRepository, subs push.SubscriptionStore, queue PushQueue) *WebhookController {
	return &WebhookController{stores: stores, registry: registry, events: events, subs: subs, queue: queue}
}

// orderEvent is the subset of a delivered order document used for the
// notification text.
type orderEvent struct {
	ID      json.Number `json:"id"`
	Status  string      `json:"status"`
	Total   string      `json:"total"`
	Billing struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"billing"`
}

// HandleStoreEvent receives one event delivery for a store. The payload is
// stored as an opaque blob; decoding it is only needed for the notification
// text, so an undecodable body still produces a history row.
func (ct *WebhookController) HandleStoreEvent(c *fiber.Ctx) error {
	storeID := c.Params("storeID")
	topic := c.Get("X-WC-Webhook-Topic")

	body := c.Body()
	if topic == "" || len(bytes.TrimSpace(body)) == 0 {
		// Ping delivery during webhook activation carries no event.
		return c.JSON(fiber.Map{"received": true})
	}

	if _, err := ct.stores.GetByID(c.Context(), storeID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Warnf("[Webhooks] Dropping %s delivery for unknown store %s", topic, storeID)
			return c.JSON(fiber.Map{"received": true})
		}
		// A failed lookup is not proof the store is gone, keep the delivery.
		log.Errorf("[Webhooks] Store lookup failed for %s: %v", storeID, err)
	}

	event := models.NotificationEvent{
		StoreID:  storeID,
		Topic:    topic,
		Resource: c.Get("X-WC-Webhook-Resource"),
		Event:    c.Get("X-WC-Webhook-Event"),
		Payload:  json.RawMessage(append([]byte(nil), body...)),
	}
	// History is best effort, delivery acknowledgment must not depend on it.
	if err := ct.events.Create(c.Context(), &event); err != nil {
		log.Errorf("[Webhooks] Failed to record %s event for store %s: %v", topic, storeID, err)
	}

	// Only order topics notify; anything else is history only.
	if topic != "order.created" && topic != "order.updated" {
		return c.JSON(fiber.Map{"received": true, "notified": 0})
	}

	var order orderEvent
	if err := json.Unmarshal(body, &order); err != nil {
		log.Warnf("[Webhooks] Undecodable %s delivery for store %s, using generic notification: %v", topic, storeID, err)
	}

	billingName := strings.TrimSpace(order.Billing.FirstName + " " + order.Billing.LastName)
	payload := push.BuildOrderPayload(storeID, topic, order.ID.String(), billingName, order.Total)

	subs := ct.subs.Get(storeID)
	if len(subs) > 0 {
		ct.queue.Enqueue(storeID, subs, payload)
	}
	return c.JSON(fiber.Map{"received": true, "notified": len(subs)})
}

// HandleListRegistrations returns the webhook rows recorded for a store.
func (ct *WebhookController) HandleListRegistrations(c *fiber.Ctx) error {
	store, err := ct.storeFromQuery(c)
	if err != nil {
		return errorResponse(c, err)
	}
	regs, err := ct.registry.GetByStoreID(c.Context(), store.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"webhooks": regs, "count": len(regs)})
}

// HandleListEvents returns the most recent event history rows for a store.
func (ct *WebhookController) HandleListEvents(c *fiber.Ctx) error {
	store, err := ct.storeFromQuery(c)
	if err != nil {
		return errorResponse(c, err)
	}
	limit := c.QueryInt("limit", 50)
	events, err := ct.events.GetByStoreID(c.Context(), store.ID, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

func (ct *WebhookController) storeFromQuery(c *fiber.Ctx) (*models.Store, error) {
	appUserID := c.Query("app_user_id")
	if appUserID == "" {
		return nil, apperrors.Validationf("app_user_id is required")
	}
	return ct.stores.GetByAppUserID(c.Context(), appUserID)
}
