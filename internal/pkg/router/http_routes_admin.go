package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SmartRiskHQ/SmartRisk/app/controllers"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/middleware"
)

// registerAdminRoutes wires the back-office under /api/v1/admin, all behind
// the admin guard.
func (h ApiRouter) registerAdminRoutes(v1 fiber.Router) {
	admin := v1.Group("/admin", middleware.RequireAdmin)

	admin.Get("/dashboard", controllers.HandleAdminDashboard)
	admin.Get("/analytics", controllers.HandleAdminAnalytics)

	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/users/:id", controllers.HandleAdminGetUser)
	admin.Put("/users/:id", controllers.HandleAdminUpdateUser)
	admin.Put("/users/:id/subscription", controllers.HandleAdminUpdateSubscription)
	admin.Delete("/users/:id", controllers.HandleAdminDeleteUser)

	admin.Get("/plans", controllers.HandleAdminListPlans)
	admin.Post("/plans", controllers.HandleAdminCreatePlan)
	admin.Put("/plans/:id", controllers.HandleAdminUpdatePlan)
	admin.Delete("/plans/:id", controllers.HandleAdminDeletePlan)

	admin.Get("/payments", controllers.HandleAdminListPayments)
	admin.Post("/payments/:txid/refund", controllers.HandleAdminMarkRefunded)

	admin.Get("/settings/:category", controllers.HandleListSettingsByCategory)
	admin.Post("/settings", controllers.HandleUpsertSiteSettings)
}
