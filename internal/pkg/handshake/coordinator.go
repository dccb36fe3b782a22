package handshake

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/cache"
	"github.com/storepulse/storepulse/internal/pkg/correlation"
	"github.com/storepulse/storepulse/internal/pkg/env"
	"github.com/storepulse/storepulse/internal/pkg/webhooks"
	"github.com/storepulse/storepulse/internal/pkg/woo"
)

// Provisioner registers the fixed webhook topic set after a handshake.
type Provisioner interface {
	Provision(ctx context.Context, store *models.Store) []models.WebhookRegistration
}

// Coordinator drives the external-authorization protocol: issue the
// redirect, receive the callback, persist issued credentials, provision
// webhooks. Handshake state lives implicitly in what has been written to the
// store record; the protocol is not resumable, a failed step means the user
// restarts from the beginning.
type Coordinator struct {
	stores      repository.StoreRepository
	provisioner Provisioner
	appName     string
	baseURL     string
}

func NewCoordinator(stores repository.StoreRepository, provisioner Provisioner) *Coordinator {
	return &Coordinator{
		stores:      stores,
		provisioner: provisioner,
		appName:     env.GetEnv("APP_NAME", "StorePulse"),
		baseURL:     strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"),
	}
}

// Initiate verifies the correlation handle and builds the upstream
// authorization URL for the client to redirect to. Nothing is persisted yet.
func (c *Coordinator) Initiate(ctx context.Context, storeURL, appUserID string) (string, error) {
	if strings.TrimSpace(storeURL) == "" || strings.TrimSpace(appUserID) == "" {
		return "", apperrors.Validationf("store_url and app_user_id are required")
	}
	if _, err := c.stores.GetByAppUserID(ctx, appUserID); err != nil {
		return "", err
	}

	token := correlation.Encode(appUserID, cache.NormalizeStoreKey(storeURL))
	return woo.AuthorizeURL(
		storeURL,
		c.appName,
		token,
		c.baseURL+"/sso/complete",
		c.baseURL+"/api/v1/sso/callback",
	)
}

// CompleteCallback receives the issued credential set from the upstream
// store. Credential persistence is the success criterion; webhook
// provisioning runs afterwards and its failures are logged but never fail
// the callback, because a store with working credentials and missing
// webhooks is still usable through manual refresh.
func (c *Coordinator) CompleteCallback(ctx context.Context, keyID, token, consumerKey, consumerSecret string) (*models.Store, error) {
	if keyID == "" || token == "" || consumerKey == "" || consumerSecret == "" {
		return nil, apperrors.Validationf("key_id, user_id, consumer_key and consumer_secret are required")
	}

	appUserID, domain, err := correlation.Decode(token)
	if err != nil {
		return nil, err
	}

	store, err := c.stores.GetByAppUserID(ctx, appUserID)
	if err != nil {
		return nil, err
	}

	if err := c.stores.SaveCredentials(ctx, store.ID, domain, consumerKey, consumerSecret, keyID); err != nil {
		return nil, err
	}
	store.StoreURL = domain
	store.ConsumerKey = consumerKey
	store.ConsumerSecret = consumerSecret
	store.KeyID = keyID

	if regs := c.provisioner.Provision(ctx, store); len(regs) < len(webhooks.Topics) {
		log.Warnf("[Handshake] Store %s connected with %d/%d webhooks provisioned", store.ID, len(regs), len(webhooks.Topics))
	}

	return store, nil
}
