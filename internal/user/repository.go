package user

import (
	"context"
	"time"
)

// Repository defines the persistence operations for users. All mutations are
// single-column-group updates; there is no optimistic versioning, last write
// wins (acceptable for this workload).
type Repository interface {
	// Create inserts a new user with StatusNone. Returns ErrEmailTaken when
	// the email already exists.
	Create(ctx context.Context, email string, name *string) (*User, error)

	// GetByEmail returns ErrUserNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns ErrUserNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetBySubscriptionID looks a user up by the provider subscription
	// reference. Returns ErrUserNotFound on a miss.
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error)

	// SetStripeCustomer stores the provider customer id on the user.
	SetStripeCustomer(ctx context.Context, id int64, customerID string) error

	// SetSubscription records a checkout completion: status, provider
	// subscription id, and the trial end in one write.
	SetSubscription(ctx context.Context, id int64, subscriptionID string, status Status, trialEnd time.Time) error

	// SetStatusBySubscription updates the status of whichever user owns the
	// subscription. A miss is not an error; it returns ErrUserNotFound and
	// the caller decides whether that matters.
	SetStatusBySubscription(ctx context.Context, subscriptionID string, status Status) error
}
