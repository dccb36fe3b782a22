package repository

import (
	"context"
	"encoding/json"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/recordstore"
)

const eventsTable = "events"

type eventRepository struct {
	client *recordstore.Client
}

// NewEventRepository creates a new record-store-backed event repository.
func NewEventRepository(client *recordstore.Client) EventRepository {
	return &eventRepository{client: client}
}

func (r *eventRepository) Create(ctx context.Context, event *models.NotificationEvent) error {
	rec, err := r.client.Create(ctx, eventsTable, map[string]any{
		"store_id": event.StoreID,
		"topic":    event.Topic,
		"resource": event.Resource,
		"event":    event.Event,
		"payload":  string(event.Payload),
	})
	if err != nil {
		return err
	}
	event.ID = rec.ID
	return nil
}

func (r *eventRepository) GetByStoreID(ctx context.Context, storeID string, limit int) ([]models.NotificationEvent, error) {
	recs, err := r.client.List(ctx, eventsTable, map[string]string{"store_id": storeID})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	events := make([]models.NotificationEvent, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		payload := json.RawMessage(fieldString(rec, "payload"))
		if !json.Valid(payload) {
			// Payloads are stored as delivered and may not be JSON; quote
			// them so the row still serializes.
			quoted, _ := json.Marshal(string(payload))
			payload = json.RawMessage(quoted)
		}
		events = append(events, models.NotificationEvent{
			ID:        rec.ID,
			StoreID:   fieldString(rec, "store_id"),
			Topic:     fieldString(rec, "topic"),
			Resource:  fieldString(rec, "resource"),
			Event:     fieldString(rec, "event"),
			Payload:   payload,
			CreatedAt: rec.CreatedAt,
		})
	}
	return events, nil
}
