package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/usercontext"
)

// HandleGetMe returns the current user and profile. Profile may be null when
// the row has not been created yet; that is a display concern for the client,
// not an error.
func HandleGetMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":       userCtx.UserID,
			"name":     userCtx.Username,
			"email":    userCtx.Email,
			"is_admin": userCtx.IsAdmin,
		},
		"profile": userCtx.Profile,
	})
}

// HandleRefreshProfile re-fetches the profile on demand. A missing row
// completes with profile=null rather than failing.
func HandleRefreshProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repos := repository.GetGlobalRepositories()
	profile, err := repos.Profile.GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"profile": nil})
		}
		log.Printf("profile refresh failed for user %d: %v", userCtx.UserID, err)
		return c.JSON(fiber.Map{"profile": nil})
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// HandleIssueAPIKey generates a fresh API key for the current user. The raw
// key is shown exactly once; only its hash is stored.
func HandleIssueAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repos := repository.GetGlobalRepositories()
	profile, err := repos.Profile.GetOrCreate(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load profile")
	}

	rawKey, err := profile.IssueAPIKey()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to generate API key")
	}
	if err := repos.Profile.Update(profile); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save API key")
	}

	return c.JSON(fiber.Map{"api_key": rawKey})
}

// HandleRevokeAPIKey revokes the current user's API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	repos := repository.GetGlobalRepositories()
	profile, err := repos.Profile.GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"ok": true})
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load profile")
	}

	profile.RevokeAPIKey()
	if err := repos.Profile.Update(profile); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to revoke API key")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleListMyPayments returns the current user's payment history.
func HandleListMyPayments(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
	}

	offset, limit := parsePagination(c)
	repos := repository.GetGlobalRepositories()
	payments, err := repos.Payment.ListByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load payments")
	}
	return c.JSON(fiber.Map{"payments": payments})
}
