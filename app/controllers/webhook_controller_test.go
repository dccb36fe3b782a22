package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/push"
)

type fakeEventRepo struct {
	events    []models.NotificationEvent
	createErr error
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.NotificationEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = fmt.Sprintf("ev-%d", len(f.events)+1)
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) GetByStoreID(_ context.Context, storeID string, limit int) ([]models.NotificationEvent, error) {
	return append([]models.NotificationEvent(nil), f.events...), nil
}

type fakeWebhookRepo struct {
	regs []models.WebhookRegistration
}

func (f *fakeWebhookRepo) Create(_ context.Context, reg *models.WebhookRegistration) error {
	f.regs = append(f.regs, *reg)
	return nil
}

func (f *fakeWebhookRepo) GetByStoreID(_ context.Context, storeID string) ([]models.WebhookRegistration, error) {
	return append([]models.WebhookRegistration(nil), f.regs...), nil
}

type enqueuedBatch struct {
	storeID string
	subs    []models.PushSubscription
	payload push.Payload
}

type capturingQueue struct {
	batches []enqueuedBatch
}

func (q *capturingQueue) Enqueue(storeID string, subs []models.PushSubscription, payload push.Payload) {
	q.batches = append(q.batches, enqueuedBatch{storeID: storeID, subs: subs, payload: payload})
}

func newWebhookApp(events *fakeEventRepo, subs push.SubscriptionStore, queue *capturingQueue) *fiber.App {
	ct := NewWebhookController(connectedStoreRepo(), &fakeWebhookRepo{}, events, subs, queue)
	app := fiber.New()
	app.Post("/webhooks/store-events/:storeID", ct.HandleStoreEvent)
	app.Get("/events", ct.HandleListEvents)
	return app
}

func deliveryRequest(storeID, topic, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/store-events/"+storeID, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if topic != "" {
		req.Header.Set("X-WC-Webhook-Topic", topic)
		req.Header.Set("X-WC-Webhook-Resource", "order")
	}
	return req
}

const orderBody = `{"id":101,"status":"processing","total":"49.90","billing":{"first_name":"Ada","last_name":"Lovelace"}}`

func TestStoreEventPersistsAndFansOut(t *testing.T) {
	events := &fakeEventRepo{}
	subs := push.NewMemorySubscriptionStore()
	subs.Subscribe("42", models.PushSubscription{
		Endpoint: "https://push.example/ep1",
		Keys:     models.PushSubscriptionKeys{P256dh: "k", Auth: "a"},
	})
	queue := &capturingQueue{}
	app := newWebhookApp(events, subs, queue)

	resp, err := app.Test(deliveryRequest("42", "order.created", orderBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, events.events, 1)
	assert.Equal(t, "42", events.events[0].StoreID)
	assert.Equal(t, "order.created", events.events[0].Topic)
	assert.Equal(t, "order", events.events[0].Resource)
	assert.JSONEq(t, orderBody, string(events.events[0].Payload))

	require.Len(t, queue.batches, 1)
	batch := queue.batches[0]
	assert.Equal(t, "42", batch.storeID)
	require.Len(t, batch.subs, 1)
	assert.Equal(t, "New order #101", batch.payload.Title)
	assert.Contains(t, batch.payload.Body, "Ada Lovelace")
	assert.Contains(t, batch.payload.Body, "49.90")
}

func TestStoreEventAcknowledgesWhenHistoryWriteFails(t *testing.T) {
	events := &fakeEventRepo{createErr: fmt.Errorf("record store down")}
	queue := &capturingQueue{}
	subs := push.NewMemorySubscriptionStore()
	subs.Subscribe("42", models.PushSubscription{
		Endpoint: "https://push.example/ep1",
		Keys:     models.PushSubscriptionKeys{P256dh: "k", Auth: "a"},
	})
	app := newWebhookApp(events, subs, queue)

	resp, err := app.Test(deliveryRequest("42", "order.created", orderBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Fan-out still happened.
	assert.Len(t, queue.batches, 1)
}

func TestStoreEventPingIsAcknowledgedWithoutFanOut(t *testing.T) {
	events := &fakeEventRepo{}
	queue := &capturingQueue{}
	app := newWebhookApp(events, push.NewMemorySubscriptionStore(), queue)

	// Activation ping: no topic header, empty body.
	resp, err := app.Test(deliveryRequest("42", "", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, events.events)
	assert.Empty(t, queue.batches)
}

func TestStoreEventUndecodableBodyIsPersistedWithGenericNotification(t *testing.T) {
	events := &fakeEventRepo{}
	queue := &capturingQueue{}
	subs := push.NewMemorySubscriptionStore()
	subs.Subscribe("42", models.PushSubscription{
		Endpoint: "https://push.example/ep1",
		Keys:     models.PushSubscriptionKeys{P256dh: "k", Auth: "a"},
	})
	app := newWebhookApp(events, subs, queue)

	resp, err := app.Test(deliveryRequest("42", "order.created", "not-json"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The payload is stored as delivered even when it does not decode.
	require.Len(t, events.events, 1)
	assert.Equal(t, "not-json", string(events.events[0].Payload))

	require.Len(t, queue.batches, 1)
	assert.Equal(t, "New order", queue.batches[0].payload.Title)
	assert.Equal(t, "Open the app for details", queue.batches[0].payload.Body)
}

func TestStoreEventUnknownStoreAcknowledgedWithoutPersisting(t *testing.T) {
	events := &fakeEventRepo{}
	queue := &capturingQueue{}
	app := newWebhookApp(events, push.NewMemorySubscriptionStore(), queue)

	resp, err := app.Test(deliveryRequest("999", "order.created", orderBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, events.events)
	assert.Empty(t, queue.batches)
}

func TestStoreEventWithoutSubscribersSkipsQueue(t *testing.T) {
	events := &fakeEventRepo{}
	queue := &capturingQueue{}
	app := newWebhookApp(events, push.NewMemorySubscriptionStore(), queue)

	resp, err := app.Test(deliveryRequest("42", "order.updated", orderBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, events.events, 1)
	assert.Empty(t, queue.batches)
}

func TestStoreEventNonOrderTopicRecordsHistoryOnly(t *testing.T) {
	events := &fakeEventRepo{}
	queue := &capturingQueue{}
	subs := push.NewMemorySubscriptionStore()
	subs.Subscribe("42", models.PushSubscription{
		Endpoint: "https://push.example/ep1",
		Keys:     models.PushSubscriptionKeys{P256dh: "k", Auth: "a"},
	})
	app := newWebhookApp(events, subs, queue)

	resp, err := app.Test(deliveryRequest("42", "product.updated", `{"id":7}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, events.events, 1)
	assert.Equal(t, "product.updated", events.events[0].Topic)
	assert.Empty(t, queue.batches)
}

func TestListEventsRequiresAppUserID(t *testing.T) {
	app := newWebhookApp(&fakeEventRepo{}, push.NewMemorySubscriptionStore(), &capturingQueue{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/events", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
