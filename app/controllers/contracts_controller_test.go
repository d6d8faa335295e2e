package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContractsApp() *fiber.App {
	app := fiber.New()
	app.Get("/contracts", HandleListContracts)
	app.Get("/contracts/:symbol", HandleGetContract)
	app.Post("/position-size", HandlePositionSize)
	return app
}

func TestHandleListContracts(t *testing.T) {
	app := newContractsApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/contracts", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Contracts []struct {
			Symbol   string `json:"symbol"`
			Category string `json:"category"`
		} `json:"contracts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Contracts)
}

func TestHandleListContracts_CategoryFilter(t *testing.T) {
	app := newContractsApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/contracts?category=metals", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Contracts []struct {
			Category string `json:"category"`
		} `json:"contracts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Contracts)
	for _, contract := range body.Contracts {
		assert.Equal(t, "metals", contract.Category)
	}
}

func TestHandleGetContract(t *testing.T) {
	app := newContractsApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/contracts/es", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var spec struct {
		Symbol    string  `json:"symbol"`
		TickValue float64 `json:"tick_value"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&spec))
	assert.Equal(t, "ES", spec.Symbol)
	assert.Equal(t, 12.50, spec.TickValue)
}

func TestHandleGetContract_Unknown(t *testing.T) {
	app := newContractsApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/contracts/BTC", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandlePositionSize(t *testing.T) {
	app := newContractsApp()

	payload := `{"symbol":"ES","account_size":100000,"risk_percent":1,"entry":5000,"stop":4990}`
	req := httptest.NewRequest(http.MethodPost, "/position-size", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Contracts  int     `json:"contracts"`
		RiskAmount float64 `json:"risk_amount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Contracts)
	assert.Equal(t, 1000.0, result.RiskAmount)
}

func TestHandlePositionSize_InvalidInput(t *testing.T) {
	app := newContractsApp()

	payload := `{"symbol":"ES","account_size":0,"risk_percent":1,"entry":5000,"stop":4990}`
	req := httptest.NewRequest(http.MethodPost, "/position-size", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Contains(t, string(body), "validation_failed")
}
