package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig holds Stripe settings sourced from the environment.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	AppURL        string `env:"APP_URL" envDefault:"http://localhost:8080"`
}

// Introductory subscription terms. A single fixed price; multi-plan billing
// is out of scope.
const (
	checkoutCurrency     = string(stripe.CurrencyEUR)
	checkoutUnitAmount   = 290 // 2,90 EUR
	checkoutIntervalDays = 28
	checkoutProductName  = "Essai PlanForge - 48h"
	checkoutProductDesc  = "Accès complet pendant 48h, puis 49,90€/28jours"
)

// StripeProvider implements Provider with the official Stripe SDK.
type StripeProvider struct {
	cfg StripeConfig
}

// NewStripeProvider creates the Stripe provider and sets the SDK key.
func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name string, userID int64) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create customer: %w", ErrProviderFailure, err)
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID string, userID int64, trialEnd time.Time) (*CheckoutSession, error) {
	uid := strconv.FormatInt(userID, 10)

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(checkoutCurrency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(checkoutProductName),
						Description: stripe.String(checkoutProductDesc),
					},
					UnitAmount: stripe.Int64(checkoutUnitAmount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval:      stripe.String(string(stripe.PriceRecurringIntervalDay)),
						IntervalCount: stripe.Int64(checkoutIntervalDays),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			TrialEnd: stripe.Int64(trialEnd.Unix()),
			Metadata: map[string]string{"user_id": uid},
		},
		SuccessURL: stripe.String(p.cfg.AppURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.cfg.AppURL + "/cancel"),
	}
	params.Context = ctx
	params.AddMetadata("user_id", uid)

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %w", ErrProviderFailure, err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(p.cfg.AppURL + "/app/settings"),
	}
	params.Context = ctx

	s, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create portal session: %w", ErrProviderFailure, err)
	}
	return s.URL, nil
}

// Event payloads are decoded into local structs instead of SDK types so the
// reconciler only depends on the fields it reads, not on the SDK's tracking
// of Stripe API versions.
type checkoutSessionPayload struct {
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type invoicePayload struct {
	Subscription string `json:"subscription"`
}

type subscriptionPayload struct {
	ID string `json:"id"`
}

func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*Event, error) {
	// API version pinning differs per Stripe account; the reconciler reads
	// only stable fields, so a version mismatch is not a reason to reject.
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	normalized := &Event{ProviderType: string(event.Type), Kind: EventIgnored}

	switch event.Type {
	case "checkout.session.completed":
		var data checkoutSessionPayload
		if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
			return nil, fmt.Errorf("decode checkout session payload: %w", err)
		}
		normalized.Kind = EventCheckoutCompleted
		normalized.UserID = data.Metadata["user_id"]
		normalized.SubscriptionID = data.Subscription

	case "invoice.paid", "invoice.payment_failed":
		var data invoicePayload
		if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
			return nil, fmt.Errorf("decode invoice payload: %w", err)
		}
		if event.Type == "invoice.paid" {
			normalized.Kind = EventInvoicePaid
		} else {
			normalized.Kind = EventInvoicePaymentFailed
		}
		normalized.SubscriptionID = data.Subscription

	case "customer.subscription.deleted":
		var data subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
			return nil, fmt.Errorf("decode subscription payload: %w", err)
		}
		normalized.Kind = EventSubscriptionDeleted
		normalized.SubscriptionID = data.ID
	}

	return normalized, nil
}
