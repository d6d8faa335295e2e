package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
)

type planRequest struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	PriceCents    int64    `json:"price_cents"`
	Currency      string   `json:"currency"`
	Interval      string   `json:"interval"`
	Features      []string `json:"features"`
	StripePriceID string   `json:"stripe_price_id"`
	IsActive      *bool    `json:"is_active"`
}

// HandleListPlans returns the active plans for the public pricing page.
func HandleListPlans(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	plans, err := repos.Plan.GetActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plans")
	}
	return c.JSON(fiber.Map{"plans": planViews(plans)})
}

// HandleAdminListPlans returns every plan, active or not.
func HandleAdminListPlans(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	plans, err := repos.Plan.GetAll()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plans")
	}
	return c.JSON(fiber.Map{"plans": planViews(plans)})
}

// HandleAdminCreatePlan creates a subscription plan.
func HandleAdminCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	plan := &models.SubscriptionPlan{
		Name:          strings.TrimSpace(req.Name),
		Slug:          strings.ToLower(strings.TrimSpace(req.Slug)),
		PriceCents:    req.PriceCents,
		Currency:      strings.ToLower(strings.TrimSpace(req.Currency)),
		Interval:      strings.ToLower(strings.TrimSpace(req.Interval)),
		StripePriceID: strings.TrimSpace(req.StripePriceID),
		IsActive:      true,
	}
	if plan.Currency == "" {
		plan.Currency = "usd"
	}
	if plan.Interval == "" {
		plan.Interval = models.PlanIntervalMonth
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if err := plan.SetFeatures(req.Features); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid feature list")
	}
	if err := plan.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.Plan.GetBySlug(plan.Slug); err == nil {
		return jsonError(c, fiber.StatusConflict, "slug_taken", "A plan with this slug already exists")
	}
	if err := repos.Plan.Create(plan); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create plan")
	}
	return c.Status(fiber.StatusCreated).JSON(planView(plan))
}

// HandleAdminUpdatePlan updates one plan.
func HandleAdminUpdatePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid plan id")
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	plan, err := repos.Plan.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}

	if v := strings.TrimSpace(req.Name); v != "" {
		plan.Name = v
	}
	if v := strings.ToLower(strings.TrimSpace(req.Slug)); v != "" {
		plan.Slug = v
	}
	if req.PriceCents > 0 {
		plan.PriceCents = req.PriceCents
	}
	if v := strings.ToLower(strings.TrimSpace(req.Currency)); v != "" {
		plan.Currency = v
	}
	if v := strings.ToLower(strings.TrimSpace(req.Interval)); v != "" {
		plan.Interval = v
	}
	if req.StripePriceID != "" {
		plan.StripePriceID = strings.TrimSpace(req.StripePriceID)
	}
	if req.Features != nil {
		if err := plan.SetFeatures(req.Features); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid feature list")
		}
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := plan.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := repos.Plan.Update(plan); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save plan")
	}
	return c.JSON(planView(plan))
}

// HandleAdminDeletePlan removes a plan.
func HandleAdminDeletePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid plan id")
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.Plan.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Plan not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load plan")
	}
	if err := repos.Plan.Delete(uint(id)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete plan")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func planView(plan *models.SubscriptionPlan) fiber.Map {
	return fiber.Map{
		"id":              plan.ID,
		"name":            plan.Name,
		"slug":            plan.Slug,
		"price_cents":     plan.PriceCents,
		"price":           plan.Price(),
		"currency":        plan.Currency,
		"interval":        plan.Interval,
		"features":        plan.Features(),
		"stripe_price_id": plan.StripePriceID,
		"is_active":       plan.IsActive,
	}
}

func planViews(plans []models.SubscriptionPlan) []fiber.Map {
	out := make([]fiber.Map, 0, len(plans))
	for i := range plans {
		out = append(out, planView(&plans[i]))
	}
	return out
}
