package plan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/planforge/pkg/pg"
)

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed plan repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, p *Plan) (*Plan, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO business_plans (user_id, title, content, business_name, industry)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, title, content, business_name, industry, created_at, updated_at`,
		p.UserID, p.Title, p.Content, p.BusinessName, p.Industry,
	)

	var created Plan
	err := row.Scan(
		&created.ID, &created.UserID, &created.Title, &created.Content,
		&created.BusinessName, &created.Industry, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return &created, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Summary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, business_name, industry, created_at
		 FROM business_plans WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Summary])
	if err != nil {
		return nil, fmt.Errorf("collect plans: %w", err)
	}
	return summaries, nil
}

func (r *PostgresRepository) GetForUser(ctx context.Context, id, userID int64) (*Plan, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, content, business_name, industry, created_at, updated_at
		 FROM business_plans WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	var p Plan
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Content,
		&p.BusinessName, &p.Industry, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) UpdateContentForUser(ctx context.Context, id, userID int64, content json.RawMessage) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE business_plans SET content = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		content, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}
