package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendlog/internal/core"
)

// MemoryRepository is the in-process record store, used by the memory
// backend and as the test double for the service layer.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]core.Expense
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]core.Expense)}
}

func (r *MemoryRepository) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = uuid.NewString()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.items[e.ID] = e
	return e, nil
}

func (r *MemoryRepository) GetExpense(_ context.Context, id string) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return core.Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (r *MemoryRepository) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[e.ID]
	if !ok {
		return core.Expense{}, ErrExpenseNotFound
	}
	e.OwnerID = stored.OwnerID
	e.CreatedAt = stored.CreatedAt
	e.UpdatedAt = time.Now().UTC()
	r.items[e.ID] = e
	return e, nil
}

func (r *MemoryRepository) DeleteExpense(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) ListExpenses(_ context.Context, ownerID string, filter ListFilter) ([]core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Expense
	for _, e := range r.items {
		if e.OwnerID != ownerID {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		out = append(out, e)
	}

	asc := filter.Sort == SortDateAsc
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			if asc {
				return out[i].Date.Before(out[j].Date.Time)
			}
			return out[i].Date.After(out[j].Date.Time)
		}
		if asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) SummarizeByCategory(ctx context.Context, ownerID string) ([]core.CategorySummary, error) {
	expenses, err := r.ListExpenses(ctx, ownerID, ListFilter{})
	if err != nil {
		return nil, err
	}
	return core.SummarizeByCategory(expenses), nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
