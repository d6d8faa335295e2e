package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/contracts"
)

// HandleListContracts returns the static contract table, optionally filtered
// by category.
func HandleListContracts(c *fiber.Ctx) error {
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		return c.JSON(fiber.Map{"contracts": contracts.ByCategory(category)})
	}
	return c.JSON(fiber.Map{"contracts": contracts.All()})
}

// HandleGetContract returns one contract spec by symbol.
func HandleGetContract(c *fiber.Ctx) error {
	spec, err := contracts.Get(c.Params("symbol"))
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown contract symbol")
	}
	return c.JSON(spec)
}

// HandlePositionSize computes a position-sizing recommendation.
func HandlePositionSize(c *fiber.Ctx) error {
	var in contracts.PositionSizeInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	result, err := contracts.PositionSize(in)
	if err != nil {
		if errors.Is(err, contracts.ErrUnknownSymbol) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown contract symbol")
		}
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	return c.JSON(result)
}
