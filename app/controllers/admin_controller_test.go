package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
)

func TestHandleAdminMarkRefunded(t *testing.T) {
	payments := &fakePaymentRepo{payments: map[string]*models.Payment{
		"pi_1": {
			ID:                  1,
			UserID:              7,
			AmountCents:         2999,
			Currency:            "usd",
			Status:              models.PaymentStatusSucceeded,
			StripeTransactionID: "pi_1",
		},
	}}
	repository.SetRepositories(&repository.Repositories{Payment: payments})

	app := fiber.New()
	app.Post("/payments/:txid/refund", HandleAdminMarkRefunded)

	req := httptest.NewRequest(http.MethodPost, "/payments/pi_1/refund", strings.NewReader(`{"reason":"duplicate charge"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		OK         bool   `json:"ok"`
		Status     string `json:"status"`
		RefundedAt string `json:"refunded_at"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.OK)
	assert.Equal(t, models.PaymentStatusRefunded, body.Status)

	refundedAt, err := time.Parse(time.RFC3339, body.RefundedAt)
	require.NoError(t, err, "refunded_at must be RFC 3339")
	assert.WithinDuration(t, time.Now(), refundedAt, time.Minute)

	stored := payments.payments["pi_1"]
	assert.Equal(t, "duplicate charge", stored.RefundReason)

	// Unknown transaction id is a 404, not a write.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/payments/pi_missing/refund", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
