package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/usercontext"
)

// APIKeyAuthMiddleware authenticates function-style endpoints with a bearer
// token or X-API-Key header. A missing or invalid token is 401; requireAdmin
// additionally turns a valid non-admin token into 403.
func APIKeyAuthMiddleware(requireAdmin bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		repos := repository.GetGlobalRepositories()
		if repos == nil {
			log.Print("api key middleware: repositories unavailable")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Service unavailable"})
		}

		hash := models.HashAPIKey(apiKey)
		profile, err := repos.Profile.GetByAPIKeyHash(hash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
			log.Printf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		isAdmin := profile.Role == models.ROLE_ADMIN
		if requireAdmin && !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Admin privileges required"})
		}

		userCtx := usercontext.UserContext{
			UserID:     profile.UserID,
			Username:   profile.FullName,
			Email:      profile.Email,
			IsLoggedIn: true,
			IsAdmin:    isAdmin,
			Profile:    profile,
		}
		c.Locals("USER_CONTEXT", userCtx)
		c.Locals(usercontext.KeyFromProtected, true)
		c.Locals(usercontext.KeyUserID, profile.UserID)
		c.Locals(usercontext.KeyIsAdmin, isAdmin)

		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
