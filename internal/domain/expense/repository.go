package expense

import (
	"context"
)

// Repository stores expenses. Every lookup is scoped to a user; an id that
// belongs to another user behaves as if it did not exist.
type Repository interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	GetByID(ctx context.Context, userID int64, id string) (*Expense, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Expense, error)
	// ListByUserIDAndDateRange returns expenses dated within [start, end).
	ListByUserIDAndDateRange(ctx context.Context, userID int64, start, end Date) ([]*Expense, error)
	ListCategories(ctx context.Context, userID int64) ([]string, error)
	Update(ctx context.Context, e *Expense) (*Expense, error)
	Delete(ctx context.Context, userID int64, id string) error
}
