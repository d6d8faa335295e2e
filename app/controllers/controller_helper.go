package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SmartRiskHQ/SmartRisk/app/repository"
)

func repositoriesOrNil() *repository.Repositories {
	return repository.GetGlobalRepositories()
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parsePagination(c *fiber.Ctx) (offset, limit int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 25)
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return (page - 1) * limit, limit
}
