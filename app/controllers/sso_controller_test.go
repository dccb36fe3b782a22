package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
)

type fakeCoordinator struct {
	authURL string
	store   *models.Store
	err     error

	gotKeyID  string
	gotToken  string
	gotKey    string
	gotSecret string
}

func (f *fakeCoordinator) Initiate(_ context.Context, storeURL, appUserID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.authURL, nil
}

func (f *fakeCoordinator) CompleteCallback(_ context.Context, keyID, token, consumerKey, consumerSecret string) (*models.Store, error) {
	f.gotKeyID = keyID
	f.gotToken = token
	f.gotKey = consumerKey
	f.gotSecret = consumerSecret
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

func newSSOApp(coord *fakeCoordinator) *fiber.App {
	ct := NewSSOController(coord)
	app := fiber.New()
	app.Post("/sso/start", ct.HandleStart)
	app.Post("/sso/callback", ct.HandleCallback)
	return app
}

func TestSSOStartReturnsAuthURL(t *testing.T) {
	coord := &fakeCoordinator{authURL: "https://shop.example.com/wc-auth/v1/authorize?x=1"}
	app := newSSOApp(coord)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sso/start", fiber.Map{
		"store_url":   "shop.example.com",
		"app_user_id": "user-42",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, coord.authURL, body["auth_url"])
}

func TestSSOStartValidatesBody(t *testing.T) {
	app := newSSOApp(&fakeCoordinator{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sso/start", fiber.Map{
		"store_url": "shop.example.com",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSSOStartUnknownHandle(t *testing.T) {
	app := newSSOApp(&fakeCoordinator{err: apperrors.NotFoundf("store with app_user_id %q", "nobody")})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sso/start", fiber.Map{
		"store_url":   "shop.example.com",
		"app_user_id": "nobody",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSSOCallbackReturnsStoreIdentity(t *testing.T) {
	coord := &fakeCoordinator{store: &models.Store{
		ID:        "42",
		AppUserID: "user-42",
		StoreURL:  "shop.example.com",
	}}
	app := newSSOApp(coord)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sso/callback", fiber.Map{
		"key_id":          7,
		"user_id":         "user-42__shop.example.com",
		"consumer_key":    "ck_live",
		"consumer_secret": "cs_live",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "42", body["store_id"])
	assert.Equal(t, "user-42", body["app_user_id"])
	assert.Equal(t, "shop.example.com", body["store_url"])

	assert.Equal(t, "7", coord.gotKeyID)
	assert.Equal(t, "user-42__shop.example.com", coord.gotToken)
	assert.Equal(t, "ck_live", coord.gotKey)
	assert.Equal(t, "cs_live", coord.gotSecret)
}

func TestSSOCallbackZeroKeyIDPassedAsEmpty(t *testing.T) {
	coord := &fakeCoordinator{err: apperrors.Validationf("key_id is required")}
	app := newSSOApp(coord)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/sso/callback", fiber.Map{
		"user_id":         "user-42__shop.example.com",
		"consumer_key":    "ck_live",
		"consumer_secret": "cs_live",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "", coord.gotKeyID)
}
