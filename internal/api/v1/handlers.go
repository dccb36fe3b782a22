package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storepulse/storepulse/app/controllers"
	"github.com/storepulse/storepulse/internal/pkg/middleware"
)

// APIServer bundles the controllers behind the versioned API surface.
type APIServer struct {
	SSO      *controllers.SSOController
	Payments *controllers.PaymentsController
	Push     *controllers.PushController
	Webhooks *controllers.WebhookController
	Data     *controllers.DataController
}

type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// RegisterHandlers attaches every v1 route. The handshake callback and the
// event delivery endpoint stay outside API key auth because the upstream
// store calls them and cannot carry our key.
func RegisterHandlers(r fiber.Router, s *APIServer) {
	r.Get("/ping", s.GetPing)

	r.Post("/sso/callback", s.SSO.HandleCallback)
	r.Post("/webhooks/store-events/:storeID", s.Webhooks.HandleStoreEvent)

	auth := middleware.APIKeyAuthMiddleware()
	r.Post("/sso/start", auth, s.SSO.HandleStart)
	r.Post("/payments/razorpay/connect", auth, s.Payments.HandleConnect)
	r.Post("/payments/razorpay/skip", auth, s.Payments.HandleSkip)
	r.Get("/payments/razorpay", auth, s.Payments.HandleCredentials)
	r.Post("/push/subscribe", auth, s.Push.HandleSubscribe)
	r.Get("/push/stats", auth, s.Push.HandleStats)
	r.Get("/webhooks", auth, s.Webhooks.HandleListRegistrations)
	r.Get("/events", auth, s.Webhooks.HandleListEvents)
	r.Get("/orders", auth, s.Data.HandleOrders)
	r.Get("/products", auth, s.Data.HandleProducts)
	r.Get("/customers", auth, s.Data.HandleCustomers)
	r.Get("/report", auth, s.Data.HandleReport)
	r.Get("/store/status", auth, s.Data.HandleStoreStatus)
}
