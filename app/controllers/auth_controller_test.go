package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
)

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	hash, err := models.HashPassword("correct-password")
	require.NoError(t, err)

	repository.SetRepositories(&repository.Repositories{
		User: &fakeUserRepo{users: map[string]*models.User{
			"trader@example.com": {
				ID:       1,
				Name:     "Jane Trader",
				Email:    "trader@example.com",
				Password: hash,
				Role:     models.ROLE_USER,
				Status:   models.STATUS_ACTIVE,
			},
		}},
	})

	app := fiber.New()
	app.Post("/login", HandleLogin)

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"email":"trader@example.com","password":"wrong"}`},
		{name: "unknown account", body: `{"email":"nobody@example.com","password":"whatever"}`},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err, tt.name)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, tt.name)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, tt.name)
		assert.Contains(t, string(body), "invalid_credentials", tt.name)
		// Rejected credentials must not establish a session.
		assert.Empty(t, resp.Header.Get("Set-Cookie"), tt.name)
	}
}

func TestHandleLogin_DisabledAccount(t *testing.T) {
	hash, err := models.HashPassword("correct-password")
	require.NoError(t, err)

	repository.SetRepositories(&repository.Repositories{
		User: &fakeUserRepo{users: map[string]*models.User{
			"gone@example.com": {
				ID:       2,
				Name:     "Gone Trader",
				Email:    "gone@example.com",
				Password: hash,
				Role:     models.ROLE_USER,
				Status:   models.STATUS_DISABLED,
			},
		}},
	})

	app := fiber.New()
	app.Post("/login", HandleLogin)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"gone@example.com","password":"correct-password"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "account_disabled")
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
}
