package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/storepulse/storepulse/app/repository"
	"github.com/storepulse/storepulse/internal/pkg/apperrors"
	"github.com/storepulse/storepulse/internal/pkg/secrets"
)

// PaymentsController manages the payment-gateway credential pair attached to
// a store record. The secret is encrypted before it is handed to the row
// store and decrypted only when the app asks for it.
type PaymentsController struct {
	stores repository.StoreRepository
}

func NewPaymentsController(stores repository.StoreRepository) *PaymentsController {
	return &PaymentsController{stores: stores}
}

type razorpayConnectRequest struct {
	AppUserID string `json:"app_user_id" validate:"required"`
	KeyID     string `json:"key_id" validate:"required"`
	KeySecret string `json:"key_secret" validate:"required"`
}

// HandleConnect stores the gateway credential pair. The plaintext secret
// never reaches the row store.
func (ct *PaymentsController) HandleConnect(c *fiber.Ctx) error {
	var req razorpayConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return badRequest(c, "app_user_id, key_id and key_secret are required")
	}

	store, err := ct.stores.GetByAppUserID(c.Context(), req.AppUserID)
	if err != nil {
		return errorResponse(c, err)
	}

	key, err := secrets.KeyFromEnv()
	if err != nil {
		log.Errorf("[Payments] Cipher key unavailable: %v", err)
		return errorResponse(c, err)
	}
	blob, err := secrets.Encrypt(req.KeySecret, key)
	if err != nil {
		log.Errorf("[Payments] Failed to encrypt secret for store %s: %v", store.ID, err)
		return errorResponse(c, err)
	}

	if err := ct.stores.SaveRazorpayCredentials(c.Context(), store.ID, req.KeyID, blob); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "key_id": req.KeyID})
}

type razorpaySkipRequest struct {
	AppUserID string `json:"app_user_id" validate:"required"`
}

// HandleSkip records that the user declined to connect the gateway so the
// app stops prompting.
func (ct *PaymentsController) HandleSkip(c *fiber.Ctx) error {
	var req razorpaySkipRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON body")
	}
	if err := validator.New().Struct(req); err != nil {
		return badRequest(c, "app_user_id is required")
	}

	store, err := ct.stores.GetByAppUserID(c.Context(), req.AppUserID)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := ct.stores.SetRazorpaySkipped(c.Context(), store.ID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "skipped": true})
}

// HandleCredentials returns the decrypted gateway credential pair. A blob
// that fails authentication surfaces as an integrity failure, not as a
// silently wrong secret.
func (ct *PaymentsController) HandleCredentials(c *fiber.Ctx) error {
	appUserID := c.Query("app_user_id")
	if appUserID == "" {
		return errorResponse(c, apperrors.Validationf("app_user_id is required"))
	}

	store, err := ct.stores.GetByAppUserID(c.Context(), appUserID)
	if err != nil {
		return errorResponse(c, err)
	}
	if !store.IsRazorpayConnected() {
		if store.RazorpaySkipped {
			return c.JSON(fiber.Map{"connected": false, "skipped": true})
		}
		return errorResponse(c, apperrors.NotFoundf("no payment credentials for store %s", store.ID))
	}

	key, err := secrets.KeyFromEnv()
	if err != nil {
		log.Errorf("[Payments] Cipher key unavailable: %v", err)
		return errorResponse(c, err)
	}
	secret, err := secrets.Decrypt(store.RazorpayKeySecretEnc, key)
	if err != nil {
		log.Errorf("[Payments] Credential blob failed integrity check for store %s: %v", store.ID, err)
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"connected":  true,
		"skipped":    false,
		"key_id":     store.RazorpayKeyID,
		"key_secret": secret,
	})
}
