package repository

import (
	"context"
	"fmt"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/recordstore"
)

const storesTable = "stores"

type storeRepository struct {
	client *recordstore.Client
}

// NewStoreRepository creates a new record-store-backed store repository.
func NewStoreRepository(client *recordstore.Client) StoreRepository {
	return &storeRepository{client: client}
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	rec, err := r.client.Get(ctx, storesTable, id)
	if err != nil {
		return nil, err
	}
	return storeFromRecord(rec), nil
}

func (r *storeRepository) GetByAppUserID(ctx context.Context, appUserID string) (*models.Store, error) {
	recs, err := r.client.List(ctx, storesTable, map[string]string{"app_user_id": appUserID})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("store with app_user_id %q: %w", appUserID, apperrors.ErrNotFound)
	}
	return storeFromRecord(&recs[0]), nil
}

func (r *storeRepository) SaveCredentials(ctx context.Context, id, storeURL, consumerKey, consumerSecret, keyID string) error {
	_, err := r.client.Update(ctx, storesTable, id, map[string]any{
		"store_url":       storeURL,
		"consumer_key":    consumerKey,
		"consumer_secret": consumerSecret,
		"key_id":          keyID,
	})
	return err
}

func (r *storeRepository) SaveRazorpayCredentials(ctx context.Context, id, razorpayKeyID, razorpaySecretEnc string) error {
	_, err := r.client.Update(ctx, storesTable, id, map[string]any{
		"razorpay_key_id":         razorpayKeyID,
		"razorpay_key_secret_enc": razorpaySecretEnc,
		"razorpay_skipped":        false,
	})
	return err
}

func (r *storeRepository) SetRazorpaySkipped(ctx context.Context, id string) error {
	_, err := r.client.Update(ctx, storesTable, id, map[string]any{
		"razorpay_skipped": true,
	})
	return err
}

func storeFromRecord(rec *recordstore.Record) *models.Store {
	return &models.Store{
		ID:                   rec.ID,
		Username:             fieldString(rec, "username"),
		AppUserID:            fieldString(rec, "app_user_id"),
		StoreURL:             fieldString(rec, "store_url"),
		ConsumerKey:          fieldString(rec, "consumer_key"),
		ConsumerSecret:       fieldString(rec, "consumer_secret"),
		KeyID:                fieldString(rec, "key_id"),
		RazorpayKeyID:        fieldString(rec, "razorpay_key_id"),
		RazorpayKeySecretEnc: fieldString(rec, "razorpay_key_secret_enc"),
		RazorpaySkipped:      fieldBool(rec, "razorpay_skipped"),
		CreatedAt:            rec.CreatedAt,
	}
}

func fieldString(rec *recordstore.Record, key string) string {
	if v, ok := rec.Fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldBool(rec *recordstore.Record, key string) bool {
	if v, ok := rec.Fields[key].(bool); ok {
		return v
	}
	return false
}

func fieldFloat(rec *recordstore.Record, key string) float64 {
	if v, ok := rec.Fields[key].(float64); ok {
		return v
	}
	return 0
}
