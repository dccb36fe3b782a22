package repository

import (
	"context"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/recordstore"
)

const webhooksTable = "webhooks"

type webhookRepository struct {
	client *recordstore.Client
}

// NewWebhookRepository creates a new record-store-backed webhook repository.
func NewWebhookRepository(client *recordstore.Client) WebhookRepository {
	return &webhookRepository{client: client}
}

func (r *webhookRepository) Create(ctx context.Context, reg *models.WebhookRegistration) error {
	rec, err := r.client.Create(ctx, webhooksTable, map[string]any{
		"store_id":     reg.StoreID,
		"webhook_id":   reg.WebhookID,
		"topic":        reg.Topic,
		"delivery_url": reg.DeliveryURL,
		"status":       reg.Status,
	})
	if err != nil {
		return err
	}
	reg.ID = rec.ID
	return nil
}

func (r *webhookRepository) GetByStoreID(ctx context.Context, storeID string) ([]models.WebhookRegistration, error) {
	recs, err := r.client.List(ctx, webhooksTable, map[string]string{"store_id": storeID})
	if err != nil {
		return nil, err
	}
	regs := make([]models.WebhookRegistration, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		regs = append(regs, models.WebhookRegistration{
			ID:          rec.ID,
			StoreID:     fieldString(rec, "store_id"),
			WebhookID:   int64(fieldFloat(rec, "webhook_id")),
			Topic:       fieldString(rec, "topic"),
			DeliveryURL: fieldString(rec, "delivery_url"),
			Status:      fieldString(rec, "status"),
			CreatedAt:   rec.CreatedAt,
		})
	}
	return regs, nil
}
