package billing

import (
	"strings"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
)

// NormalizeSubscriptionStatus maps a provider status string onto the fixed
// set stored on profiles. Unknown values collapse to canceled so a profile
// never carries a status the rest of the app cannot interpret.
func NormalizeSubscriptionStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive:
		return models.SubscriptionStatusActive
	case models.SubscriptionStatusTrialing:
		return models.SubscriptionStatusTrialing
	case models.SubscriptionStatusPastDue, "unpaid":
		return models.SubscriptionStatusPastDue
	case models.SubscriptionStatusPaymentFailed:
		return models.SubscriptionStatusPaymentFailed
	default:
		return models.SubscriptionStatusCanceled
	}
}

// IsEntitlingStatus reports whether a status keeps the subscribed flag on.
func IsEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing, models.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
