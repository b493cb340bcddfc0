package user

import "time"

// Status is the subscription state of a user, kept in sync with the payment
// provider by the billing webhook reconciler.
type Status string

const (
	StatusNone     Status = "none"
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// User is the identity and billing record. Email is the natural key; rows are
// created on first login or first checkout attempt and never deleted.
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	Name               *string    `json:"name,omitempty"`
	StripeCustomerID   *string    `json:"-"`
	SubscriptionStatus Status     `json:"subscription_status"`
	SubscriptionID     *string    `json:"-"`
	TrialEndsAt        *time.Time `json:"trial_end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// HasAccess reports whether the user may reach the paid API surface: an
// active or trialing subscription, or a trial window that has not ended yet.
func (u *User) HasAccess(now time.Time) bool {
	if u == nil {
		return false
	}
	if u.SubscriptionStatus == StatusActive || u.SubscriptionStatus == StatusTrialing {
		return true
	}
	return u.TrialEndsAt != nil && u.TrialEndsAt.After(now)
}
