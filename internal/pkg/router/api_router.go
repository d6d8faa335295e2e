package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/SmartRiskHQ/SmartRisk/app/controllers"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Smart Risk Management API",
		})
	})

	v1 := api.Group("/v1")

	// auth
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Post("/auth/logout", controllers.HandleLogout)
	v1.Post("/auth/password-reset/request", controllers.HandlePasswordResetRequest)
	v1.Post("/auth/password-reset/confirm", controllers.HandlePasswordResetConfirm)

	// current user
	v1.Get("/me", middleware.RequireAuth, controllers.HandleGetMe)
	v1.Post("/me/refresh", middleware.RequireAuth, controllers.HandleRefreshProfile)
	v1.Post("/me/api-key", middleware.RequireAuth, controllers.HandleIssueAPIKey)
	v1.Delete("/me/api-key", middleware.RequireAuth, controllers.HandleRevokeAPIKey)
	v1.Get("/me/payments", middleware.RequireAuth, controllers.HandleListMyPayments)

	// public content
	v1.Get("/plans", controllers.HandleListPlans)
	v1.Get("/settings", controllers.HandleGetSiteSettings)
	v1.Get("/contracts", controllers.HandleListContracts)
	v1.Get("/contracts/:symbol", controllers.HandleGetContract)
	v1.Post("/position-size", controllers.HandlePositionSize)

	// billing
	v1.Get("/billing/config", controllers.HandleBillingConfig)
	v1.Post("/billing/checkout", middleware.RequireAuth, controllers.HandleCreateCheckoutSession)
	v1.Post("/billing/checkout/complete", middleware.RequireAuth, controllers.HandleCheckoutComplete)
	v1.Post("/billing/portal", middleware.RequireAuth, controllers.HandleCreatePortalSession)

	// function-style endpoints authenticated by API key (bearer or X-API-Key)
	fn := v1.Group("/functions")
	fn.Post("/create-portal-session", middleware.APIKeyAuthMiddleware(false), controllers.HandleCreatePortalSession)
	fn.Get("/stripe-analytics", middleware.APIKeyAuthMiddleware(true), controllers.HandleAdminAnalytics)
	fn.Get("/stripe-payments", middleware.APIKeyAuthMiddleware(true), controllers.HandleAdminListPayments)
	fn.Get("/site-settings", controllers.HandleGetSiteSettings)
	fn.Post("/site-settings", middleware.APIKeyAuthMiddleware(true), controllers.HandleUpsertSiteSettings)

	h.registerAdminRoutes(v1)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
