package user

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/planforge/pkg/pg"
)

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed user repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = "id, email, name, stripe_customer_id, subscription_status, subscription_id, trial_end_date, created_at"

func (r *PostgresRepository) scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.StripeCustomerID,
		&u.SubscriptionStatus,
		&u.SubscriptionID,
		&u.TrialEndsAt,
		&u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, email string, name *string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name) VALUES ($1, $2) RETURNING `+userColumns,
		email, name,
	)
	u, err := r.scanUser(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	return r.scanUser(row)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return r.scanUser(row)
}

func (r *PostgresRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE subscription_id = $1`,
		subscriptionID,
	)
	return r.scanUser(row)
}

func (r *PostgresRepository) SetStripeCustomer(ctx context.Context, id int64, customerID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET stripe_customer_id = $1 WHERE id = $2`,
		customerID, id,
	)
	if err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetSubscription(ctx context.Context, id int64, subscriptionID string, status Status, trialEnd time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET subscription_status = $1, subscription_id = $2, trial_end_date = $3 WHERE id = $4`,
		status, subscriptionID, trialEnd, id,
	)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetStatusBySubscription(ctx context.Context, subscriptionID string, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET subscription_status = $1 WHERE subscription_id = $2`,
		status, subscriptionID,
	)
	if err != nil {
		return fmt.Errorf("set status by subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
