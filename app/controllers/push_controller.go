package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/jobqueue"
	"github.com/storepulse/storepulse/internal/pkg/push"
)

// QueueInspector exposes delivery counters for the send queue.
type QueueInspector interface {
	GetStats() jobqueue.Stats
	GetQueueSize() int
}

type PushController struct {
	stores repository.StoreRepository
	subs   push.SubscriptionStore
	queue  QueueInspector
}

func NewPushController(stores repository.StoreRepository, subs push.SubscriptionStore, queue QueueInspector) *PushController {
	return &PushController{stores: stores, subs: subs, queue: queue}
}

type pushSubscribeRequest struct {
	AppUserID    string                  `json:"app_user_id" validate:"required"`
	Subscription models.PushSubscription `json:"subscription"`
}

// HandleSubscribe registers a device delivery endpoint for a store's events.
// Re-registering an identical subscription is a no-op.
func (ct *PushController) HandleSubscribe(c *fiber.Ctx) error {
	var req pushSubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return badRequest(c, "app_user_id and a complete subscription are required")
	}

	store, err := ct.stores.GetByAppUserID(c.Context(), req.AppUserID)
	if err != nil {
		return errorResponse(c, err)
	}

	created := ct.subs.Subscribe(store.ID, req.Subscription)
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"ok":            true,
		"created":       created,
		"subscriptions": ct.subs.Count(store.ID),
	})
}

// HandleStats reports queue delivery counters.
func (ct *PushController) HandleStats(c *fiber.Ctx) error {
	stats := ct.queue.GetStats()
	return c.JSON(fiber.Map{
		"enqueued":   stats.Enqueued,
		"completed":  stats.Completed,
		"failed":     stats.Failed,
		"rejected":   stats.Rejected,
		"dropped":    stats.Dropped,
		"queue_size": ct.queue.GetQueueSize(),
	})
}
