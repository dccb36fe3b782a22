package controllers

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storepulse/storepulse/app/models"
)

// HandshakeCoordinator drives the external-authorization protocol.
type HandshakeCoordinator interface {
	Initiate(ctx context.Context, storeURL, appUserID string) (string, error)
	CompleteCallback(ctx context.Context, keyID, token, consumerKey, consumerSecret string) (*models.Store, error)
}

type SSOController struct {
	coordinator HandshakeCoordinator
}

func NewSSOController(coordinator HandshakeCoordinator) *SSOController {
	return &SSOController{coordinator: coordinator}
}

type ssoStartRequest struct {
	StoreURL  string `json:"store_url" validate:"required"`
	AppUserID string `json:"app_user_id" validate:"required"`
}

// HandleStart validates the request and returns the upstream authorization
// URL the client redirects the user to.
func (ct *SSOController) HandleStart(c *fiber.Ctx) error {
	var req ssoStartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return badRequest(c, "store_url and app_user_id are required")
	}

	authURL, err := ct.coordinator.Initiate(c.Context(), req.StoreURL, req.AppUserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"auth_url": authURL})
}

// ssoCallbackRequest is the credential document the upstream store posts
// after the user approves access. key_id arrives as a number.
type ssoCallbackRequest struct {
	KeyID          int64  `json:"key_id"`
	UserID         string `json:"user_id"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	KeyPermissions string `json:"key_permissions"`
}

// HandleCallback receives the issued credential set from the upstream store.
// The user_id field carries back the correlation token we sent on start.
func (ct *SSOController) HandleCallback(c *fiber.Ctx) error {
	var req ssoCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}

	keyID := ""
	if req.KeyID != 0 {
		keyID = strconv.FormatInt(req.KeyID, 10)
	}

	store, err := ct.coordinator.CompleteCallback(c.Context(), keyID, req.UserID, req.ConsumerKey, req.ConsumerSecret)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"ok":          true,
		"store_id":    store.ID,
		"app_user_id": store.AppUserID,
		"store_url":   store.StoreURL,
	})
}

// HandleComplete is where the upstream sends the user after approval.
func (ct *SSOController) HandleComplete(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "connected", "message": "Store connected. You can close this window."})
}
