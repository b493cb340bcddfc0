package plan

import (
	"context"
	"encoding/json"
)

// Repository defines plan persistence. Every read and write takes the
// requesting user's id and filters by it; ownership is enforced here, not in
// handlers, so no code path can skip it.
type Repository interface {
	// Create inserts a plan and returns it with id and timestamps assigned.
	Create(ctx context.Context, p *Plan) (*Plan, error)

	// ListByUser returns the user's plans, most recent first, without content.
	ListByUser(ctx context.Context, userID int64) ([]Summary, error)

	// GetForUser returns ErrPlanNotFound when no plan with that id belongs
	// to the user.
	GetForUser(ctx context.Context, id, userID int64) (*Plan, error)

	// UpdateContentForUser replaces the content and bumps the modification
	// timestamp. Returns ErrPlanNotFound when the plan is absent or owned by
	// another user.
	UpdateContentForUser(ctx context.Context, id, userID int64, content json.RawMessage) error
}
