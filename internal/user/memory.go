package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository implements Repository in memory. Used in tests and as a
// reference for the expected repository semantics.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

// NewMemoryRepository creates an empty in-memory user repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		users:  make(map[int64]*User),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, email string, name *string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}

	u := &User{
		ID:                 r.nextID,
		Email:              email,
		Name:               name,
		SubscriptionStatus: StatusNone,
		CreatedAt:          time.Now(),
	}
	r.nextID++
	r.users[u.ID] = u

	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.SubscriptionID != nil && *u.SubscriptionID == subscriptionID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) SetStripeCustomer(ctx context.Context, id int64, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.StripeCustomerID = &customerID
	return nil
}

func (r *MemoryRepository) SetSubscription(ctx context.Context, id int64, subscriptionID string, status Status, trialEnd time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.SubscriptionID = &subscriptionID
	u.SubscriptionStatus = status
	u.TrialEndsAt = &trialEnd
	return nil
}

func (r *MemoryRepository) SetStatusBySubscription(ctx context.Context, subscriptionID string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.SubscriptionID != nil && *u.SubscriptionID == subscriptionID {
			u.SubscriptionStatus = status
			return nil
		}
	}
	return ErrUserNotFound
}
