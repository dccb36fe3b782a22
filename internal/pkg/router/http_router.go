package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storepulse/storepulse/app/controllers"
)

type HttpRouter struct {
	sso *controllers.SSOController
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "storepulse", "status": "ok"})
	})

	// Landing page the upstream store sends the user back to after approval.
	app.Get("/sso/complete", h.sso.HandleComplete)
}

func NewHttpRouter(sso *controllers.SSOController) *HttpRouter {
	return &HttpRouter{sso: sso}
}
