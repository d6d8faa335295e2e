package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SmartRiskHQ/SmartRisk/app/controllers"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/middleware"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session store and make it the process default
	session.Install(session.NewManager())

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// registerPublicRoutes holds the routes outside the /api/v1 group: health
// and the provider webhook, which must stay off session middleware extras.
func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}
