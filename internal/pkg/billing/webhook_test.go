package billing

import "testing"

func TestParseWebhookEvent(t *testing.T) {
	raw := []byte(`{
		"id": "evt_123",
		"type": "customer.subscription.updated",
		"data": { "object": { "id": "sub_123" } }
	}`)

	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_123" || ev.Type != EventSubscriptionUpdated {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.ID, ev.Type)
	}
	if len(ev.Object) == 0 {
		t.Fatalf("expected object payload to be carried through")
	}
}

func TestParseWebhookEvent_MissingFields(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte(`{"type":"x"}`)); err == nil {
		t.Fatalf("expected missing event id to fail")
	}
	if _, err := ParseWebhookEvent([]byte(`{"id":"evt_1"}`)); err == nil {
		t.Fatalf("expected missing event type to fail")
	}
	if _, err := ParseWebhookEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected invalid json to fail")
	}
}

func TestParseSubscriptionEvent(t *testing.T) {
	raw := []byte(`{
		"id": "sub_123",
		"customer": "cus_456",
		"status": "active",
		"current_period_end": 1700003600,
		"metadata": { "user_id": "42" },
		"items": { "data": [ { "price": { "id": "price_abc" } } ] }
	}`)

	ev, err := ParseSubscriptionEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.SubscriptionID != "sub_123" || ev.CustomerID != "cus_456" {
		t.Fatalf("unexpected ids: sub=%q customer=%q", ev.SubscriptionID, ev.CustomerID)
	}
	if ev.Status != "active" || ev.PriceID != "price_abc" {
		t.Fatalf("unexpected status/price: %q %q", ev.Status, ev.PriceID)
	}
	if ev.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", ev.UserID)
	}
	if ev.CurrentPeriodEnd == nil || ev.CurrentPeriodEnd.Unix() != 1700003600 {
		t.Fatalf("unexpected period end: %v", ev.CurrentPeriodEnd)
	}
}

func TestParseSubscriptionEvent_NoMetadata(t *testing.T) {
	raw := []byte(`{"id": "sub_123", "customer": "cus_456", "status": "canceled"}`)

	ev, err := ParseSubscriptionEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.UserID != 0 {
		t.Fatalf("expected zero user id, got %d", ev.UserID)
	}
	if ev.CurrentPeriodEnd != nil {
		t.Fatalf("expected nil period end")
	}
}

func TestParseCheckoutSessionEvent(t *testing.T) {
	raw := []byte(`{
		"id": "cs_123",
		"customer": "cus_456",
		"subscription": "sub_789",
		"payment_intent": "pi_abc",
		"amount_total": 2999,
		"currency": "eur",
		"metadata": { "user_id": "7" }
	}`)

	ev, err := ParseCheckoutSessionEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.TransactionID != "pi_abc" {
		t.Fatalf("expected payment intent as transaction id, got %q", ev.TransactionID)
	}
	if ev.AmountCents != 2999 || ev.Currency != "eur" {
		t.Fatalf("unexpected amount: %d %s", ev.AmountCents, ev.Currency)
	}
	if ev.UserID != 7 {
		t.Fatalf("expected user id 7, got %d", ev.UserID)
	}
}

func TestParseCheckoutSessionEvent_Fallbacks(t *testing.T) {
	raw := []byte(`{
		"id": "cs_123",
		"customer": "cus_456",
		"client_reference_id": "15"
	}`)

	ev, err := ParseCheckoutSessionEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.TransactionID != "cs_123" {
		t.Fatalf("expected session id fallback as transaction id, got %q", ev.TransactionID)
	}
	if ev.UserID != 15 {
		t.Fatalf("expected client_reference_id fallback, got %d", ev.UserID)
	}
	if ev.Currency != "usd" {
		t.Fatalf("expected default currency usd, got %q", ev.Currency)
	}
}

func TestParseInvoiceEvent(t *testing.T) {
	raw := []byte(`{"id": "in_123", "customer": "cus_456", "amount_due": 1499, "currency": "usd"}`)

	ev, err := ParseInvoiceEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.InvoiceID != "in_123" || ev.CustomerID != "cus_456" || ev.AmountDue != 1499 {
		t.Fatalf("unexpected invoice event: %+v", ev)
	}

	if _, err := ParseInvoiceEvent([]byte(`{"id":"in_123"}`)); err == nil {
		t.Fatalf("expected missing customer id to fail")
	}
}
