// Package memory holds an in-process expense store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/domain/expense"
)

type ExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*expense.Expense
	now      func() time.Time
}

func NewExpenseRepository() *ExpenseRepository {
	return &ExpenseRepository{
		expenses: make(map[string]*expense.Expense),
		now:      time.Now,
	}
}

// SetClock replaces the clock used for created_at and updated_at.
func (r *ExpenseRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// copyOf keeps callers from mutating stored values.
func copyOf(e *expense.Expense) *expense.Expense {
	c := *e
	return &c
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyOf(e)
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.expenses[stored.ID] = stored

	return copyOf(stored), nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, userID int64, id string) (*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return nil, expense.ErrExpenseNotFound
	}
	return copyOf(e), nil
}

func (r *ExpenseRepository) ListByUserID(ctx context.Context, userID int64) ([]*expense.Expense, error) {
	return r.filter(ctx, func(e *expense.Expense) bool {
		return e.UserID == userID
	})
}

func (r *ExpenseRepository) ListByUserIDAndDateRange(ctx context.Context, userID int64, start, end expense.Date) ([]*expense.Expense, error) {
	return r.filter(ctx, func(e *expense.Expense) bool {
		return e.UserID == userID && expense.InWindow(e.Date, start, end)
	})
}

func (r *ExpenseRepository) filter(ctx context.Context, keep func(*expense.Expense) bool) ([]*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*expense.Expense{}
	for _, e := range r.expenses {
		if keep(e) {
			result = append(result, copyOf(e))
		}
	}
	expense.SortExpenses(result)
	return result, nil
}

func (r *ExpenseRepository) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	expenses, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return expense.UniqueCategories(expenses), nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.expenses[e.ID]
	if !ok || current.UserID != e.UserID {
		return nil, expense.ErrExpenseNotFound
	}

	stored := copyOf(e)
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = r.now().UTC()
	r.expenses[stored.ID] = stored

	return copyOf(stored), nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID int64, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return expense.ErrExpenseNotFound
	}
	delete(r.expenses, id)
	return nil
}

// ListUserIDs returns every user that owns at least one expense, ascending.
func (r *ExpenseRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]struct{})
	var ids []int64
	for _, e := range r.expenses {
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		ids = append(ids, e.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ListRecords returns the persisted shape of a user's expenses.
func (r *ExpenseRepository) ListRecords(ctx context.Context, userID int64) ([]expense.Record, error) {
	expenses, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	records := make([]expense.Record, len(expenses))
	for i, e := range expenses {
		records[i] = e.Record()
	}
	return records, nil
}
