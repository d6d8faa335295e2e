package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2026, 5, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)
	assert.Equal(t, now.UTC().Format(time.RFC3339), formatted)
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var gotOffset, gotLimit int
	app.Get("/items", func(c *fiber.Ctx) error {
		gotOffset, gotLimit = parsePagination(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		url        string
		wantOffset int
		wantLimit  int
	}{
		{url: "/items", wantOffset: 0, wantLimit: 25},
		{url: "/items?page=3&limit=10", wantOffset: 20, wantLimit: 10},
		{url: "/items?page=0&limit=0", wantOffset: 0, wantLimit: 25},
		{url: "/items?limit=500", wantOffset: 0, wantLimit: 25},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, tt.wantOffset, gotOffset, tt.url)
		assert.Equal(t, tt.wantLimit, gotLimit, tt.url)
	}
}
