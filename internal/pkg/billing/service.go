package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"gorm.io/gorm"
)

const ProviderStripe = "stripe"

// Service implements the subscription reconciliation workflow: the
// checkout-return activation path and its webhook-driven counterpart.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// activationStrategy is one entry in the ordered activation fallback chain.
type activationStrategy struct {
	name     string
	fallback bool
	run      func(ctx context.Context) error
}

// ActivateSubscription marks a user subscribed after a successful checkout
// redirect. Strategies run in order until one succeeds; running the workflow
// twice for the same user must not create duplicate profile rows, so every
// write is keyed on the stable user identifier. The caller's context bounds
// the whole chain, cancelling in-flight queries when it expires.
func (s *Service) ActivateSubscription(ctx context.Context, userID uint, email, fullName string) (ActivationResult, error) {
	result := ActivationResult{Outcome: ActivationFailed, Email: strings.TrimSpace(email)}
	if userID == 0 {
		return result, errors.New("user_id is required")
	}

	strategies := []activationStrategy{
		{name: "update_existing", run: func(ctx context.Context) error {
			return s.markExistingProfileSubscribed(ctx, userID, email, fullName)
		}},
		{name: "insert_profile", run: func(ctx context.Context) error {
			return s.insertSubscribedProfile(ctx, userID, email, fullName)
		}},
		{name: "privileged_upsert", fallback: true, run: func(ctx context.Context) error {
			return s.repo.RawActivateProfile(ctx, userID, email, fullName)
		}},
	}

	var lastErr error
	for _, strategy := range strategies {
		if err := strategy.run(ctx); err != nil {
			lastErr = fmt.Errorf("activation strategy %s: %w", strategy.name, err)
			continue
		}
		result.Strategy = strategy.name
		if strategy.fallback {
			result.Outcome = ActivationViaFallback
		} else {
			result.Outcome = ActivationSucceeded
		}
		return result, nil
	}
	return result, lastErr
}

// markExistingProfileSubscribed updates the profile keyed by user id. It
// fails with gorm.ErrRecordNotFound when no profile exists yet so the next
// strategy can insert one.
func (s *Service) markExistingProfileSubscribed(ctx context.Context, userID uint, email, fullName string) error {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}

	profile.Subscribed = true
	if !IsEntitlingStatus(profile.SubscriptionStatus) {
		profile.SubscriptionStatus = models.SubscriptionStatusActive
	}
	if profile.Email == "" {
		profile.Email = strings.TrimSpace(email)
	}
	if profile.FullName == "" {
		profile.FullName = strings.TrimSpace(fullName)
	}
	return s.repo.SaveProfile(ctx, profile)
}

func (s *Service) insertSubscribedProfile(ctx context.Context, userID uint, email, fullName string) error {
	return s.repo.CreateProfile(ctx, &models.Profile{
		UserID:             userID,
		Email:              strings.TrimSpace(email),
		FullName:           strings.TrimSpace(fullName),
		Role:               models.ROLE_USER,
		Subscribed:         true,
		SubscriptionStatus: models.SubscriptionStatusActive,
	})
}

// ApplySubscriptionUpdate handles customer.subscription.created/updated:
// the profile keyed by the metadata user id gets the provider's status,
// period end and billing identifiers copied onto it.
func (s *Service) ApplySubscriptionUpdate(ctx context.Context, ev *SubscriptionEvent) error {
	profile, err := s.lookupProfileForSubscription(ctx, ev)
	if err != nil {
		return err
	}
	if profile == nil {
		if ev.UserID == 0 {
			// No user id in metadata and no profile for the customer id:
			// nothing to reconcile against, acknowledge and move on.
			return nil
		}
		profile = &models.Profile{UserID: ev.UserID, Role: models.ROLE_USER}
		if err := s.repo.CreateProfile(ctx, profile); err != nil {
			return err
		}
	}

	status := NormalizeSubscriptionStatus(ev.Status)
	profile.Subscribed = IsEntitlingStatus(status)
	profile.SubscriptionStatus = status
	profile.SubscriptionEndDate = ev.CurrentPeriodEnd
	if ev.CustomerID != "" {
		profile.StripeCustomerID = ev.CustomerID
	}
	if ev.SubscriptionID != "" {
		profile.StripeSubscriptionID = ev.SubscriptionID
	}
	if ev.PriceID != "" {
		profile.StripePriceID = ev.PriceID
	}
	return s.repo.SaveProfile(ctx, profile)
}

// ApplySubscriptionDeleted handles customer.subscription.deleted.
func (s *Service) ApplySubscriptionDeleted(ctx context.Context, ev *SubscriptionEvent) error {
	profile, err := s.lookupProfileForSubscription(ctx, ev)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}
	profile.Subscribed = false
	profile.SubscriptionStatus = models.SubscriptionStatusCanceled
	return s.repo.SaveProfile(ctx, profile)
}

// ApplyCheckoutCompleted handles checkout.session.completed: the same profile
// update as a subscription event plus exactly one immutable payment row,
// deduplicated on the transaction id.
func (s *Service) ApplyCheckoutCompleted(ctx context.Context, ev *CheckoutSessionEvent, planID *uint) (bool, error) {
	if ev.UserID == 0 {
		return false, errors.New("checkout event missing user id metadata")
	}

	if err := s.ApplySubscriptionUpdate(ctx, &SubscriptionEvent{
		SubscriptionID: ev.SubscriptionID,
		CustomerID:     ev.CustomerID,
		Status:         models.SubscriptionStatusActive,
		UserID:         ev.UserID,
	}); err != nil {
		return false, err
	}

	payment := &models.Payment{
		UserID:              ev.UserID,
		PlanID:              planID,
		AmountCents:         ev.AmountCents,
		Currency:            ev.Currency,
		Status:              models.PaymentStatusSucceeded,
		StripeTransactionID: ev.TransactionID,
		StripeCustomerID:    ev.CustomerID,
		Description:         "subscription checkout",
	}
	return s.repo.CreatePaymentIfNotExists(ctx, payment)
}

// ApplyInvoicePaymentFailed handles invoice.payment_failed. Invoices carry no
// user id, so the profile is looked up by billing-customer id; a missing
// profile is a documented no-op rather than an error.
func (s *Service) ApplyInvoicePaymentFailed(ctx context.Context, ev *InvoiceEvent) error {
	profile, err := s.repo.GetProfileByCustomerID(ctx, ev.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	profile.Subscribed = false
	profile.SubscriptionStatus = models.SubscriptionStatusPaymentFailed
	return s.repo.SaveProfile(ctx, profile)
}

// lookupProfileForSubscription prefers the metadata user id and falls back to
// the customer id. Returns nil, nil when no profile exists yet.
func (s *Service) lookupProfileForSubscription(ctx context.Context, ev *SubscriptionEvent) (*models.Profile, error) {
	if ev.UserID != 0 {
		profile, err := s.repo.GetProfileByUserID(ctx, ev.UserID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, nil
	}
	if ev.CustomerID != "" {
		profile, err := s.repo.GetProfileByCustomerID(ctx, ev.CustomerID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		return false, nil, errors.New("provider event id is required")
	}

	event := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, errMsg)
}
