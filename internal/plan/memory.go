package plan

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryRepository implements Repository in memory for tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	plans  map[int64]*Plan
}

// NewMemoryRepository creates an empty in-memory plan repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, plans: make(map[int64]*Plan)}
}

func (r *MemoryRepository) Create(ctx context.Context, p *Plan) (*Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	created := *p
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	stored := created
	r.plans[created.ID] = &stored
	return &created, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID int64) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]Summary, 0)
	for _, p := range r.plans {
		if p.UserID != userID {
			continue
		}
		summaries = append(summaries, Summary{
			ID:           p.ID,
			Title:        p.Title,
			BusinessName: p.BusinessName,
			Industry:     p.Industry,
			CreatedAt:    p.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (r *MemoryRepository) GetForUser(ctx context.Context, id, userID int64) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[id]
	if !ok || p.UserID != userID {
		return nil, ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) UpdateContentForUser(ctx context.Context, id, userID int64, content json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.plans[id]
	if !ok || p.UserID != userID {
		return ErrPlanNotFound
	}
	p.Content = append(json.RawMessage(nil), content...)
	p.UpdatedAt = time.Now()
	return nil
}
