package credentials

import (
	"context"

	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/woo"
)

// Hint is the identity a request carries: either an inline credential set or
// a reference to a stored record via the app user handle.
type Hint struct {
	StoreURL       string `json:"store_url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	AppUserID      string `json:"app_user_id"`
}

// Resolver turns a request's identity hint into a concrete upstream-API
// credential set. Errors propagate to the caller unmodified.
type Resolver struct {
	stores repository.StoreRepository
}

func NewResolver(stores repository.StoreRepository) *Resolver {
	return &Resolver{stores: stores}
}

// Resolve prefers inline credentials when the hint carries a complete set,
// otherwise loads the referenced store record.
func (r *Resolver) Resolve(ctx context.Context, hint Hint) (woo.Credentials, error) {
	if hint.StoreURL != "" && hint.ConsumerKey != "" && hint.ConsumerSecret != "" {
		return woo.Credentials{
			StoreURL:       hint.StoreURL,
			ConsumerKey:    hint.ConsumerKey,
			ConsumerSecret: hint.ConsumerSecret,
		}, nil
	}
	if hint.AppUserID == "" {
		return woo.Credentials{}, apperrors.Validationf("either inline credentials or app_user_id is required")
	}

	store, err := r.stores.GetByAppUserID(ctx, hint.AppUserID)
	if err != nil {
		return woo.Credentials{}, err
	}
	if !store.IsConnected() {
		return woo.Credentials{}, apperrors.Validationf("store %s is not connected yet", store.ID)
	}
	return woo.Credentials{
		StoreURL:       store.StoreURL,
		ConsumerKey:    store.ConsumerKey,
		ConsumerSecret: store.ConsumerSecret,
	}, nil
}
