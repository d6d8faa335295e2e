package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/usercontext"
)

func newGuardedApp(inject usercontext.UserContext, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", inject)
		return c.Next()
	})
	app.Get("/guarded", guard, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		ctx        usercontext.UserContext
		wantStatus int
	}{
		{name: "anonymous", ctx: usercontext.UserContext{}, wantStatus: fiber.StatusUnauthorized},
		{name: "logged in", ctx: usercontext.UserContext{UserID: 1, IsLoggedIn: true}, wantStatus: fiber.StatusOK},
		{name: "logged in without profile", ctx: usercontext.UserContext{UserID: 1, IsLoggedIn: true, Profile: nil}, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		app := newGuardedApp(tt.ctx, RequireAuth)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, tt.name)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		ctx        usercontext.UserContext
		wantStatus int
	}{
		{name: "anonymous", ctx: usercontext.UserContext{}, wantStatus: fiber.StatusUnauthorized},
		{name: "non-admin", ctx: usercontext.UserContext{UserID: 1, IsLoggedIn: true}, wantStatus: fiber.StatusForbidden},
		{name: "admin", ctx: usercontext.UserContext{UserID: 1, IsLoggedIn: true, IsAdmin: true}, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		app := newGuardedApp(tt.ctx, RequireAdmin)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, tt.name)
	}
}

func TestExtractAPIKeyFromHeader(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = extractAPIKeyFromHeader(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "none", headers: nil, want: ""},
		{name: "x-api-key", headers: map[string]string{"X-API-Key": "srk_abc"}, want: "srk_abc"},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer srk_def"}, want: "srk_def"},
		{name: "bearer case-insensitive", headers: map[string]string{"Authorization": "bearer srk_ghi"}, want: "srk_ghi"},
		{name: "x-api-key wins", headers: map[string]string{"X-API-Key": "srk_abc", "Authorization": "Bearer srk_def"}, want: "srk_abc"},
		{name: "basic ignored", headers: map[string]string{"Authorization": "Basic dXNlcg=="}, want: ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		_, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
