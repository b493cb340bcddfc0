package billing

import (
	"context"
	"time"
)

// Provider is the minimal payment provider surface the service needs. The
// abstraction keeps the hosted checkout, customer portal, and webhook
// verification behind one seam so tests can run without Stripe and the SDK
// stays contained in one file.
type Provider interface {
	// CreateCustomer creates a provider-side customer for the user. A fresh
	// customer is created per call; the service does not dedupe by an
	// existing customer id.
	CreateCustomer(ctx context.Context, email, name string, userID int64) (string, error)

	// CreateCheckoutSession builds a hosted subscription checkout with a
	// provider-side trial ending at trialEnd. The user id travels as
	// metadata for webhook correlation.
	CreateCheckoutSession(ctx context.Context, customerID string, userID int64, trialEnd time.Time) (*CheckoutSession, error)

	// CreatePortalSession returns a pre-authenticated self-service portal
	// URL scoped to the customer.
	CreatePortalSession(ctx context.Context, customerID string) (string, error)

	// VerifyWebhook checks the signature and normalizes the event. It is the
	// sole trust boundary for inbound billing state changes; no event is
	// processed without it.
	VerifyWebhook(payload []byte, signature string) (*Event, error)
}

// CheckoutSession is a hosted checkout the client should be redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// EventKind is the normalized billing event type.
type EventKind string

const (
	EventCheckoutCompleted    EventKind = "checkout_completed"
	EventInvoicePaid          EventKind = "invoice_paid"
	EventInvoicePaymentFailed EventKind = "invoice_payment_failed"
	EventSubscriptionDeleted  EventKind = "subscription_deleted"

	// EventIgnored marks event types the reconciler does not act on. They
	// are acknowledged so the provider does not retry.
	EventIgnored EventKind = "ignored"
)

// Event is a verified, normalized webhook event.
type Event struct {
	Kind           EventKind
	ProviderType   string // original provider event name, for logging
	UserID         string // from event metadata; empty when absent
	SubscriptionID string
}
