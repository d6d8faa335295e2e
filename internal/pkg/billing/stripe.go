package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/env"
)

const (
	stripeDefaultAPIBase = "https://api.stripe.com"
	stripeRequestTimeout = 15 * time.Second
	stripeMaxBodyBytes   = 1 << 20
)

// StripeClient talks to the Stripe REST API with the restricted secret key.
// It covers only what the app needs: checkout sessions, the customer portal
// and read access to charges and active subscriptions.
type StripeClient struct {
	apiBase        string
	secretKey      string
	publishableKey string
	webhookSecret  string
	priceMonthly   string
	priceYearly    string
	portalURL      string
	httpClient     *http.Client
}

// NewStripeClientFromEnv builds a client from STRIPE_* environment variables.
func NewStripeClientFromEnv() (*StripeClient, error) {
	secretKey := strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", ""))
	if secretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}

	apiBase := strings.TrimRight(strings.TrimSpace(env.GetEnv("STRIPE_API_BASE", stripeDefaultAPIBase)), "/")
	return &StripeClient{
		apiBase:        apiBase,
		secretKey:      secretKey,
		publishableKey: strings.TrimSpace(env.GetEnv("STRIPE_PUBLISHABLE_KEY", "")),
		webhookSecret:  strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		priceMonthly:   strings.TrimSpace(env.GetEnv("STRIPE_PRICE_MONTHLY", "")),
		priceYearly:    strings.TrimSpace(env.GetEnv("STRIPE_PRICE_YEARLY", "")),
		portalURL:      strings.TrimSpace(env.GetEnv("STRIPE_PORTAL_URL", "")),
		httpClient:     &http.Client{Timeout: stripeRequestTimeout},
	}, nil
}

// PublishableKey returns the key the frontend uses to start Stripe.js.
func (c *StripeClient) PublishableKey() string {
	return c.publishableKey
}

// WebhookSecret returns the shared secret for webhook signature checks.
func (c *StripeClient) WebhookSecret() string {
	return c.webhookSecret
}

// PriceID maps a billing interval onto the configured Stripe price id.
func (c *StripeClient) PriceID(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "year", "yearly", "annual":
		return c.priceYearly
	default:
		return c.priceMonthly
	}
}

// PortalURL returns the static customer-portal link, if one is configured.
func (c *StripeClient) PortalURL() string {
	return c.portalURL
}

// CheckoutSession is the subset of a Stripe checkout session the app reads.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PortalSession is a one-time customer-portal session.
type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Charge is one row of the admin payment reconciliation view.
type Charge struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Customer string `json:"customer"`
	Created  int64  `json:"created"`
	Refunded bool   `json:"refunded"`
}

// CreateCheckoutSession starts a subscription checkout for the given user.
// The user id travels in both metadata and subscription metadata so every
// later webhook can be keyed back to the account.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, userID uint, customerEmail, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	if priceID == "" {
		return nil, errors.New("price id is required")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("client_reference_id", strconv.FormatUint(uint64(userID), 10))
	form.Set("metadata[user_id]", strconv.FormatUint(uint64(userID), 10))
	form.Set("subscription_data[metadata][user_id]", strconv.FormatUint(uint64(userID), 10))
	if customerEmail != "" {
		form.Set("customer_email", customerEmail)
	}

	var session CheckoutSession
	if err := c.postForm(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreatePortalSession opens the Stripe customer portal for a billing customer.
func (c *StripeClient) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	if customerID == "" {
		return nil, errors.New("customer id is required")
	}

	form := url.Values{}
	form.Set("customer", customerID)
	if returnURL != "" {
		form.Set("return_url", returnURL)
	}

	var session PortalSession
	if err := c.postForm(ctx, "/v1/billing_portal/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListCharges returns the most recent charges for the admin payments view.
func (c *StripeClient) ListCharges(ctx context.Context, limit int) ([]Charge, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	var out struct {
		Data []Charge `json:"data"`
	}
	path := fmt.Sprintf("/v1/charges?limit=%d", limit)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// MonthlyRecurringRevenueCents sums the item totals of all active
// subscriptions, normalizing yearly prices to a monthly figure.
func (c *StripeClient) MonthlyRecurringRevenueCents(ctx context.Context) (int64, error) {
	var out struct {
		Data []struct {
			Items struct {
				Data []struct {
					Quantity int64 `json:"quantity"`
					Price    struct {
						UnitAmount int64 `json:"unit_amount"`
						Recurring  struct {
							Interval string `json:"interval"`
						} `json:"recurring"`
					} `json:"price"`
				} `json:"data"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/v1/subscriptions?status=active&limit=100", &out); err != nil {
		return 0, err
	}

	var total int64
	for _, sub := range out.Data {
		for _, item := range sub.Items.Data {
			qty := item.Quantity
			if qty <= 0 {
				qty = 1
			}
			amount := item.Price.UnitAmount * qty
			if item.Price.Recurring.Interval == "year" {
				amount /= 12
			}
			total += amount
		}
	}
	return total, nil
}

func (c *StripeClient) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Guards against double charges if the transport retries a POST.
	req.Header.Set("Idempotency-Key", uuid.NewString())
	return c.do(req, out)
}

func (c *StripeClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *StripeClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, stripeMaxBodyBytes))
	if err != nil {
		return fmt.Errorf("stripe response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var stripeErr struct {
			Error struct {
				Type    string `json:"type"`
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return fmt.Errorf("stripe api error (status %d, code %s): %s", resp.StatusCode, stripeErr.Error.Code, stripeErr.Error.Message)
		}
		return fmt.Errorf("stripe api error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
