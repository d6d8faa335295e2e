package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/middleware"
)

// newSettingsApp wires the upsert handler behind the admin API-key guard the
// way the functions route group does.
func newSettingsApp(settings *fakeSettingRepo, profiles *fakeProfileRepo) *fiber.App {
	repository.SetRepositories(&repository.Repositories{
		Profile: profiles,
		Setting: settings,
	})

	app := fiber.New()
	app.Post("/site-settings", middleware.APIKeyAuthMiddleware(true), HandleUpsertSiteSettings)
	return app
}

func TestUpsertSiteSettings_AuthGates(t *testing.T) {
	userKey := "srk_user_key"
	adminKey := "srk_admin_key"
	profiles := &fakeProfileRepo{byHash: map[string]*models.Profile{
		models.HashAPIKey(userKey): {
			ID:     1,
			UserID: 10,
			Role:   models.ROLE_USER,
		},
		models.HashAPIKey(adminKey): {
			ID:     2,
			UserID: 11,
			Role:   models.ROLE_ADMIN,
		},
	}}

	payload := `{"hero_title":{"fr":"Titre","en":"Title"}}`

	tests := []struct {
		name       string
		authHeader string
		apiKey     string
		wantStatus int
		wantWrites int
	}{
		{name: "missing token", wantStatus: fiber.StatusUnauthorized, wantWrites: 0},
		{name: "unknown token", apiKey: "srk_bogus", wantStatus: fiber.StatusUnauthorized, wantWrites: 0},
		{name: "non-admin bearer token", authHeader: "Bearer " + userKey, wantStatus: fiber.StatusForbidden, wantWrites: 0},
		{name: "admin key", apiKey: adminKey, wantStatus: fiber.StatusOK, wantWrites: 1},
	}

	for _, tt := range tests {
		settings := &fakeSettingRepo{values: map[string]string{}}
		app := newSettingsApp(settings, profiles)

		req := httptest.NewRequest(http.MethodPost, "/site-settings", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		if tt.authHeader != "" {
			req.Header.Set("Authorization", tt.authHeader)
		}
		if tt.apiKey != "" {
			req.Header.Set("X-API-Key", tt.apiKey)
		}

		resp, err := app.Test(req, -1)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, tt.name)
		// A rejected request must not write any rows.
		assert.Len(t, settings.values, tt.wantWrites, tt.name)
	}
}
