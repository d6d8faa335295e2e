package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func signStripePayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyStripeWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)

	header := signStripePayload(payload, secret, now)
	if !verifyStripeSignatureAt(payload, header, secret, now) {
		t.Fatalf("expected valid signature to verify")
	}
	if verifyStripeSignatureAt(payload, header, "whsec_other", now) {
		t.Fatalf("expected wrong secret to fail")
	}
	if verifyStripeSignatureAt([]byte(`{"tampered":true}`), header, secret, now) {
		t.Fatalf("expected tampered payload to fail")
	}
}

func TestVerifyStripeWebhookSignature_Tolerance(t *testing.T) {
	payload := []byte(`{"id":"evt_123"}`)
	secret := "whsec_test"
	signedAt := time.Unix(1700000000, 0)
	header := signStripePayload(payload, secret, signedAt)

	if !verifyStripeSignatureAt(payload, header, secret, signedAt.Add(4*time.Minute)) {
		t.Fatalf("expected signature within tolerance to verify")
	}
	if verifyStripeSignatureAt(payload, header, secret, signedAt.Add(6*time.Minute)) {
		t.Fatalf("expected stale signature to fail")
	}
	if verifyStripeSignatureAt(payload, header, secret, signedAt.Add(-6*time.Minute)) {
		t.Fatalf("expected future-dated signature to fail")
	}
}

func TestVerifyStripeWebhookSignature_MalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_123"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)

	for _, header := range []string{
		"",
		"v1=deadbeef",
		"t=1700000000",
		"t=notanumber,v1=deadbeef",
		"t=1700000000,v1=not-hex",
	} {
		if verifyStripeSignatureAt(payload, header, secret, now) {
			t.Fatalf("expected malformed header %q to fail", header)
		}
	}
}

func TestVerifyStripeWebhookSignature_MultipleCandidates(t *testing.T) {
	payload := []byte(`{"id":"evt_123"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", now.Unix(), payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	header := fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(), "00"+valid[2:], valid)
	if !verifyStripeSignatureAt(payload, header, secret, now) {
		t.Fatalf("expected one matching candidate to be enough")
	}
}
