package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stripe event types the webhook endpoint acts on. Anything else is recorded
// and acknowledged without processing.
const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionCreated  = "customer.subscription.created"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// WebhookEvent is the envelope of a parsed provider event.
type WebhookEvent struct {
	ID     string
	Type   string
	Object json.RawMessage
}

// SubscriptionEvent carries the subscription fields the reconciliation
// workflow needs. UserID comes from event metadata set at checkout time.
type SubscriptionEvent struct {
	SubscriptionID   string
	CustomerID       string
	PriceID          string
	Status           string
	CurrentPeriodEnd *time.Time
	UserID           uint
}

// CheckoutSessionEvent carries the checkout-session fields used to activate
// a subscription and append the corresponding payment row.
type CheckoutSessionEvent struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
	TransactionID  string
	AmountCents    int64
	Currency       string
	UserID         uint
}

// InvoiceEvent carries the failed-invoice fields. There is no user id on
// invoices; profiles are looked up by customer id instead.
type InvoiceEvent struct {
	InvoiceID  string
	CustomerID string
	AmountDue  int64
	Currency   string
}

// ParseWebhookEvent decodes the event envelope.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("webhook payload missing event id")
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("webhook payload missing event type")
	}
	return &WebhookEvent{
		ID:     strings.TrimSpace(raw.ID),
		Type:   strings.TrimSpace(raw.Type),
		Object: raw.Data.Object,
	}, nil
}

// ParseSubscriptionEvent decodes a customer.subscription.* object.
func ParseSubscriptionEvent(object json.RawMessage) (*SubscriptionEvent, error) {
	var raw struct {
		ID               string            `json:"id"`
		Customer         string            `json:"customer"`
		Status           string            `json:"status"`
		CurrentPeriodEnd int64             `json:"current_period_end"`
		Metadata         map[string]string `json:"metadata"`
		Items            struct {
			Data []struct {
				Price struct {
					ID string `json:"id"`
				} `json:"price"`
			} `json:"data"`
		} `json:"items"`
	}
	if err := json.Unmarshal(object, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("subscription event missing subscription id")
	}

	out := &SubscriptionEvent{
		SubscriptionID: strings.TrimSpace(raw.ID),
		CustomerID:     strings.TrimSpace(raw.Customer),
		Status:         strings.TrimSpace(raw.Status),
		UserID:         parseMetadataUserID(raw.Metadata),
	}
	if len(raw.Items.Data) > 0 {
		out.PriceID = strings.TrimSpace(raw.Items.Data[0].Price.ID)
	}
	if raw.CurrentPeriodEnd > 0 {
		end := time.Unix(raw.CurrentPeriodEnd, 0)
		out.CurrentPeriodEnd = &end
	}
	return out, nil
}

// ParseCheckoutSessionEvent decodes a checkout.session.completed object.
func ParseCheckoutSessionEvent(object json.RawMessage) (*CheckoutSessionEvent, error) {
	var raw struct {
		ID                string            `json:"id"`
		Customer          string            `json:"customer"`
		Subscription      string            `json:"subscription"`
		PaymentIntent     string            `json:"payment_intent"`
		AmountTotal       int64             `json:"amount_total"`
		Currency          string            `json:"currency"`
		ClientReferenceID string            `json:"client_reference_id"`
		Metadata          map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(object, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, errors.New("checkout event missing session id")
	}

	userID := parseMetadataUserID(raw.Metadata)
	if userID == 0 {
		// Older checkout links carry the user id as client_reference_id.
		if v, err := strconv.ParseUint(strings.TrimSpace(raw.ClientReferenceID), 10, 32); err == nil {
			userID = uint(v)
		}
	}

	transactionID := strings.TrimSpace(raw.PaymentIntent)
	if transactionID == "" {
		transactionID = strings.TrimSpace(raw.ID)
	}

	return &CheckoutSessionEvent{
		SessionID:      strings.TrimSpace(raw.ID),
		CustomerID:     strings.TrimSpace(raw.Customer),
		SubscriptionID: strings.TrimSpace(raw.Subscription),
		TransactionID:  transactionID,
		AmountCents:    raw.AmountTotal,
		Currency:       normalizeCurrency(raw.Currency),
		UserID:         userID,
	}, nil
}

// ParseInvoiceEvent decodes an invoice.payment_failed object.
func ParseInvoiceEvent(object json.RawMessage) (*InvoiceEvent, error) {
	var raw struct {
		ID        string `json:"id"`
		Customer  string `json:"customer"`
		AmountDue int64  `json:"amount_due"`
		Currency  string `json:"currency"`
	}
	if err := json.Unmarshal(object, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Customer) == "" {
		return nil, fmt.Errorf("invoice event %s missing customer id", raw.ID)
	}
	return &InvoiceEvent{
		InvoiceID:  strings.TrimSpace(raw.ID),
		CustomerID: strings.TrimSpace(raw.Customer),
		AmountDue:  raw.AmountDue,
		Currency:   normalizeCurrency(raw.Currency),
	}, nil
}

func parseMetadataUserID(metadata map[string]string) uint {
	if metadata == nil {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimSpace(metadata["user_id"]), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func normalizeCurrency(currency string) string {
	c := strings.ToLower(strings.TrimSpace(currency))
	if c == "" {
		return "usd"
	}
	return c
}
