package billing

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// ActivationOutcome classifies how a checkout-return activation ended.
type ActivationOutcome string

const (
	ActivationSucceeded   ActivationOutcome = "activated"
	ActivationViaFallback ActivationOutcome = "activated_via_fallback"
	ActivationFailed      ActivationOutcome = "failed"
)

// ActivationResult is the uniform result of running the ordered activation
// strategies. Email is always populated so a failed activation can surface
// identifying information for manual support escalation.
type ActivationResult struct {
	Outcome  ActivationOutcome `json:"outcome"`
	Strategy string            `json:"strategy"`
	Email    string            `json:"email"`
}
