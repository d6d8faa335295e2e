package controllers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
)

// HandleGetSiteSettings returns all public settings merged over the
// compiled-in bilingual defaults as a single object.
func HandleGetSiteSettings(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	settings, err := repos.Setting.GetPublic()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load settings")
	}
	return c.JSON(fiber.Map{"settings": settings})
}

// HandleUpsertSiteSettings writes one or more settings by key. Auth (401 for
// a missing token, 403 for a non-admin) is enforced by the route's API-key
// middleware before this handler runs; nothing is written on either rejection.
func HandleUpsertSiteSettings(c *fiber.Ctx) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Body must be a JSON object of key/value pairs")
	}
	if len(body) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "No settings provided")
	}

	repos := repository.GetGlobalRepositories()
	written := make([]fiber.Map, 0, len(body))
	for key, value := range body {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := repos.Setting.SetValue(key, string(value)); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to save setting "+key)
		}
		written = append(written, fiber.Map{"key": key, "category": models.SettingCategory(key)})
	}

	return c.JSON(fiber.Map{"ok": true, "written": written})
}

// HandleListSettingsByCategory returns stored rows for one category tag.
func HandleListSettingsByCategory(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Params("category"))
	if category == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Missing category")
	}

	repos := repository.GetGlobalRepositories()
	rows, err := repos.Setting.ListByCategory(category)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load settings")
	}
	return c.JSON(fiber.Map{"settings": rows})
}
