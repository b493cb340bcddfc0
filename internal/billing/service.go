package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/planforge/internal/session"
	"github.com/dmitrymomot/planforge/internal/user"
	"github.com/dmitrymomot/planforge/pkg/logger"
)

// Config holds billing settings sourced from the environment.
type Config struct {
	TrialPeriod time.Duration `env:"BILLING_TRIAL_PERIOD" envDefault:"48h"`
}

// Service is the billing session factory and webhook reconciler. It mutates
// only the subscription fields of the user record; local state never changes
// on checkout creation, only when the webhook confirms it.
type Service struct {
	users    user.Repository
	sessions session.Store
	provider Provider
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source, used by tests to pin trial windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the billing service.
func NewService(users user.Repository, sessions session.Store, provider Provider, cfg Config, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		provider: provider,
		cfg:      cfg,
		log:      logger.NewDiscard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckout performs get-or-create on the user by email (independent of
// the login path, same semantics), provisions a fresh provider customer, and
// returns the hosted checkout session. The user's subscription fields remain
// untouched until the webhook confirms the checkout.
func (s *Service) CreateCheckout(ctx context.Context, email, name string) (*CheckoutSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		var namePtr *string
		if name != "" {
			namePtr = &name
		}
		u, err = s.users.Create(ctx, email, namePtr)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.InfoContext(ctx, "user registered via checkout", "user_id", u.ID)
	}

	customerID, err := s.provider.CreateCustomer(ctx, email, name, u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetStripeCustomer(ctx, u.ID, customerID); err != nil {
		return nil, fmt.Errorf("persist customer id: %w", err)
	}

	checkout, err := s.provider.CreateCheckoutSession(ctx, customerID, u.ID, s.now().Add(s.cfg.TrialPeriod))
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "checkout session created", "user_id", u.ID, "checkout_id", checkout.ID)
	return checkout, nil
}

// CreatePortal resolves the session to its user and returns a self-service
// billing portal URL. Fails when the caller has no valid session or the user
// has never reached checkout (no provider customer).
func (s *Service) CreatePortal(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if u.StripeCustomerID == nil || *u.StripeCustomerID == "" {
		return "", ErrNoBillingCustomer
	}

	return s.provider.CreatePortalSession(ctx, *u.StripeCustomerID)
}

// HandleWebhook verifies the event signature and applies the subscription
// state machine. Every transition is idempotent: applying the same event
// twice leaves the user in the same state as applying it once. Unrecognized
// event types and lookup misses are logged and ignored, never errors, since
// events may be unrelated or arrive out of order.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	event, err := s.provider.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Kind {
	case EventCheckoutCompleted:
		userID, err := strconv.ParseInt(event.UserID, 10, 64)
		if err != nil {
			s.log.WarnContext(ctx, "checkout completed without usable user metadata", "event", event.ProviderType)
			return nil
		}
		trialEnd := s.now().Add(s.cfg.TrialPeriod)
		if err := s.users.SetSubscription(ctx, userID, event.SubscriptionID, user.StatusTrialing, trialEnd); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				s.log.WarnContext(ctx, "checkout completed for unknown user", "user_id", userID)
				return nil
			}
			return fmt.Errorf("apply checkout completion: %w", err)
		}
		s.log.InfoContext(ctx, "subscription trialing", "user_id", userID, "subscription_id", event.SubscriptionID)

	case EventInvoicePaid:
		return s.transition(ctx, event, user.StatusActive)

	case EventInvoicePaymentFailed:
		return s.transition(ctx, event, user.StatusPastDue)

	case EventSubscriptionDeleted:
		return s.transition(ctx, event, user.StatusCanceled)

	default:
		s.log.DebugContext(ctx, "ignoring webhook event", "event", event.ProviderType)
	}

	return nil
}

func (s *Service) transition(ctx context.Context, event *Event, status user.Status) error {
	if event.SubscriptionID == "" {
		s.log.WarnContext(ctx, "billing event without subscription id", "event", event.ProviderType)
		return nil
	}

	err := s.users.SetStatusBySubscription(ctx, event.SubscriptionID, status)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// The subscription may belong to another system or the checkout
			// completion has not arrived yet.
			s.log.DebugContext(ctx, "billing event for unknown subscription", "event", event.ProviderType, "subscription_id", event.SubscriptionID)
			return nil
		}
		return fmt.Errorf("apply %s: %w", event.ProviderType, err)
	}

	s.log.InfoContext(ctx, "subscription status updated", "subscription_id", event.SubscriptionID, "status", string(status))
	return nil
}
