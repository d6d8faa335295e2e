package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/billing"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/database"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/env"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/usercontext"
)

// activationWait bounds how long the checkout-return handler waits on its
// database writes before surfacing the manual-escalation state.
const activationWait = 2 * time.Second

// redirectDelaySeconds is the UX pause before the client leaves the
// confirmation screen.
const redirectDelaySeconds = 3

// HandleBillingConfig exposes the publishable key, price ids and portal URL
// the frontend needs to start a checkout.
func HandleBillingConfig(c *fiber.Ctx) error {
	client, err := billing.NewStripeClientFromEnv()
	if err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "billing_unconfigured", "Billing is not configured")
	}
	return c.JSON(fiber.Map{
		"publishable_key": client.PublishableKey(),
		"price_monthly":   client.PriceID("month"),
		"price_yearly":    client.PriceID("year"),
		"portal_url":      client.PortalURL(),
	})
}

type checkoutRequest struct {
	Interval string `json:"interval"`
}

// HandleCreateCheckoutSession starts a hosted checkout for the current user.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login required")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		req.Interval = "month"
	}

	client, err := billing.NewStripeClientFromEnv()
	if err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "billing_unconfigured", "Billing is not configured")
	}

	baseURL := strings.TrimRight(env.GetEnv("PUBLIC_URL", "http://localhost:3000"), "/")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := client.CreateCheckoutSession(
		ctx,
		userCtx.UserID,
		userCtx.Email,
		client.PriceID(req.Interval),
		baseURL+"/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		baseURL+"/pricing",
	)
	if err != nil {
		log.Printf("checkout session create failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusBadGateway, "checkout_failed", "Could not start checkout")
	}

	return c.JSON(fiber.Map{"session_id": session.ID, "url": session.URL})
}

// HandleCheckoutComplete is the client-return activation path. It runs the
// ordered activation strategies and always answers with a uniform result;
// a failed activation carries the user's email for manual support escalation.
func HandleCheckoutComplete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login required")
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), activationWait)
	defer cancel()

	result, err := svc.ActivateSubscription(ctx, userCtx.UserID, userCtx.Email, userCtx.Username)
	if err != nil {
		log.Printf("subscription activation failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result":  result,
			"message": "Automatic activation failed. Contact support with the email shown.",
		})
	}

	return c.JSON(fiber.Map{
		"result":                 result,
		"redirect":               "/dashboard",
		"redirect_delay_seconds": redirectDelaySeconds,
	})
}

// HandleCreatePortalSession opens the customer portal for the current user.
func HandleCreatePortalSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login required")
	}
	if userCtx.Profile == nil || userCtx.Profile.StripeCustomerID == "" {
		return jsonError(c, fiber.StatusNotFound, "no_billing_account", "No billing customer on file")
	}

	client, err := billing.NewStripeClientFromEnv()
	if err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "billing_unconfigured", "Billing is not configured")
	}

	baseURL := strings.TrimRight(env.GetEnv("PUBLIC_URL", "http://localhost:3000"), "/")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := client.CreatePortalSession(ctx, userCtx.Profile.StripeCustomerID, baseURL+"/account")
	if err != nil {
		log.Printf("portal session create failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusBadGateway, "portal_failed", "Could not open billing portal")
	}

	return c.JSON(fiber.Map{"url": session.URL})
}

// HandleStripeWebhook is the server-side counterpart of the reconciliation
// workflow. Every delivery is recorded idempotently before any processing.
// A redelivered event id is acknowledged as a duplicate only when the stored
// event already processed cleanly; a redelivery after a processing failure
// or a rejected signature is the provider's retry and runs the full
// verify-and-dispatch path again. Processing failures answer with an error
// status so the provider keeps retrying.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	event, err := billing.ParseWebhookEvent(rawBody)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	signatureValid := billing.VerifyStripeWebhookSignature(rawBody, signature, secret)
	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        billing.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.ProcessedOK() {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	processErr := dispatchStripeEvent(ctx, svc, event)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, processErr)
	if processErr != nil {
		log.Printf("webhook %s (%s) processing failed: %v", event.ID, event.Type, processErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func dispatchStripeEvent(ctx context.Context, svc *billing.Service, event *billing.WebhookEvent) error {
	switch event.Type {
	case billing.EventCheckoutCompleted:
		checkout, err := billing.ParseCheckoutSessionEvent(event.Object)
		if err != nil {
			return err
		}
		_, err = svc.ApplyCheckoutCompleted(ctx, checkout, activePlanID())
		return err
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated:
		sub, err := billing.ParseSubscriptionEvent(event.Object)
		if err != nil {
			return err
		}
		return svc.ApplySubscriptionUpdate(ctx, sub)
	case billing.EventSubscriptionDeleted:
		sub, err := billing.ParseSubscriptionEvent(event.Object)
		if err != nil {
			return err
		}
		return svc.ApplySubscriptionDeleted(ctx, sub)
	case billing.EventInvoicePaymentFailed:
		invoice, err := billing.ParseInvoiceEvent(event.Object)
		if err != nil {
			return err
		}
		return svc.ApplyInvoicePaymentFailed(ctx, invoice)
	default:
		// Recorded, acknowledged, not acted on.
		return nil
	}
}

// activePlanID links checkout payments to the cheapest active monthly plan
// when one exists.
func activePlanID() *uint {
	repos := repositoriesOrNil()
	if repos == nil {
		return nil
	}
	plans, err := repos.Plan.GetActive()
	if err != nil || len(plans) == 0 {
		return nil
	}
	var picked *models.SubscriptionPlan
	for i := range plans {
		if plans[i].Interval != models.PlanIntervalMonth {
			continue
		}
		if picked == nil || plans[i].PriceCents < picked.PriceCents {
			picked = &plans[i]
		}
	}
	if picked == nil {
		picked = &plans[0]
	}
	id := picked.ID
	return &id
}
