package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/analytics"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/billing"
)

func analyticsService() *analytics.Service {
	client, err := billing.NewStripeClientFromEnv()
	if err != nil {
		client = nil
	}
	return analytics.NewService(repository.GetGlobalRepositories(), client)
}

// HandleAdminDashboard returns the aggregated dashboard figures.
func HandleAdminDashboard(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	data, err := analyticsService().GetDashboardData(ctx)
	if err != nil {
		log.Printf("dashboard aggregation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load dashboard data")
	}
	return c.JSON(data)
}

// HandleAdminAnalytics returns churn/retention/success-rate metrics.
func HandleAdminAnalytics(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	data, err := analyticsService().GetMetricsData(ctx)
	if err != nil {
		log.Printf("analytics aggregation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load analytics data")
	}
	return c.JSON(data)
}

// HandleAdminListUsers returns a paginated user list, optionally filtered by
// a search query over name and email.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		users, err := repos.User.Search(query)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "User search failed")
		}
		return c.JSON(fiber.Map{"users": users})
	}

	offset, limit := parsePagination(c)
	users, err := repos.User.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load users")
	}
	total, err := repos.User.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count users")
	}
	return c.JSON(fiber.Map{"users": users, "total": total})
}

// HandleAdminGetUser returns one user with their profile.
func HandleAdminGetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid user id")
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	var profile *models.Profile
	if p, err := repos.Profile.GetByUserID(user.ID); err == nil {
		profile = p
	}
	return c.JSON(fiber.Map{"user": user, "profile": profile})
}

type adminUpdateUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// HandleAdminUpdateUser updates account fields on one user.
func HandleAdminUpdateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid user id")
	}

	var req adminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	if v := strings.TrimSpace(req.Name); v != "" {
		user.Name = v
	}
	if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
		user.Email = v
	}
	if req.Role == models.ROLE_USER || req.Role == models.ROLE_ADMIN {
		user.Role = req.Role
	}
	switch req.Status {
	case models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED:
		user.Status = req.Status
	}

	if err := user.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := repos.User.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save user")
	}
	return c.JSON(fiber.Map{"user": user})
}

type adminUpdateSubscriptionRequest struct {
	Subscribed *bool  `json:"subscribed"`
	Status     string `json:"status"`
	EndDate    string `json:"end_date"`
}

// HandleAdminUpdateSubscription is the manual correction path: an admin can
// set any profile's subscription fields directly when automatic
// reconciliation failed.
func HandleAdminUpdateSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid user id")
	}

	var req adminUpdateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	profile, err := repos.Profile.GetOrCreate(uint(id))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load profile")
	}

	if req.Subscribed != nil {
		profile.Subscribed = *req.Subscribed
	}
	if req.Status != "" {
		profile.SubscriptionStatus = billing.NormalizeSubscriptionStatus(req.Status)
	}
	if req.EndDate != "" {
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "end_date must be RFC 3339")
		}
		profile.SubscriptionEndDate = &end
	}

	if err := repos.Profile.Update(profile); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save profile")
	}
	return c.JSON(fiber.Map{"profile": profile})
}

// HandleAdminDeleteUser soft deletes a user and their profile.
func HandleAdminDeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid user id")
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.User.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}

	if err := repos.Profile.Delete(uint(id)); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("profile delete failed for user %d: %v", id, err)
	}
	if err := repos.User.Delete(uint(id)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete user")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleAdminListPayments returns local payment rows with summary stats,
// optionally enriched with the provider's recent charges.
func HandleAdminListPayments(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	offset, limit := parsePagination(c)

	payments, err := repos.Payment.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payments")
	}
	stats, err := analyticsService().GetPaymentStats()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payment stats")
	}

	response := fiber.Map{"payments": payments, "stats": stats}

	if c.QueryBool("include_charges", false) {
		if client, err := billing.NewStripeClientFromEnv(); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if charges, err := client.ListCharges(ctx, limit); err == nil {
				response["charges"] = charges
			} else {
				log.Printf("stripe charge list failed: %v", err)
			}
		}
	}

	return c.JSON(response)
}

type refundRequest struct {
	Reason string `json:"reason"`
}

// HandleAdminMarkRefunded stamps refund metadata onto a payment row.
func HandleAdminMarkRefunded(c *fiber.Ctx) error {
	txID := strings.TrimSpace(c.Params("txid"))
	if txID == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Missing transaction id")
	}

	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		req.Reason = ""
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.Payment.GetByTransactionID(txID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Payment not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payment")
	}
	if err := repos.Payment.MarkRefunded(txID, strings.TrimSpace(req.Reason)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to mark refund")
	}

	updated, err := repos.Payment.GetByTransactionID(txID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to reload payment")
	}
	return c.JSON(fiber.Map{
		"ok":          true,
		"status":      updated.Status,
		"refunded_at": formatTimePtr(updated.RefundedAt),
	})
}
