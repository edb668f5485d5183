package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/domain/expense"
)

const expenseColumns = `
	id, user_id, amount, currency, category, expense_date, description, recurring,
	recurring_type, frequency, repeat_interval, end_repeat, end_date, created_at, updated_at`

type ExpenseRepository struct {
	db *DB
}

func NewExpenseRepository(db *DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row in expenseColumns order.
func scanRecord(row rowScanner) (expense.Record, error) {
	var (
		r             expense.Record
		recurringType sql.NullString
		frequency     sql.NullString
		interval      sql.NullInt64
		endRepeat     sql.NullString
		endDate       sql.NullTime
	)

	err := row.Scan(
		&r.ID, &r.UserID, &r.Amount, &r.Currency, &r.Category, &r.Date, &r.Description, &r.Recurring,
		&recurringType, &frequency, &interval, &endRepeat, &endDate,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return expense.Record{}, err
	}

	if recurringType.Valid {
		r.RecurringType = &recurringType.String
	}
	if frequency.Valid {
		r.Frequency = &frequency.String
	}
	if interval.Valid {
		n := int(interval.Int64)
		r.Interval = &n
	}
	if endRepeat.Valid {
		r.EndRepeat = &endRepeat.String
	}
	if endDate.Valid {
		r.EndDate = &endDate.Time
	}
	return r, nil
}

// queryError tags connection failures with expense.ErrStorageUnavailable.
func queryError(action string, err error) error {
	if IsConnectionError(err) {
		return fmt.Errorf("%w: failed to %s: %w", expense.ErrStorageUnavailable, action, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func scanExpense(row rowScanner) (*expense.Expense, error) {
	r, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	return expense.Restore(r)
}

// recordArgs returns the writable columns of r, from user_id to end_date.
func recordArgs(r expense.Record) []any {
	return []any{
		r.UserID, r.Amount, r.Currency, r.Category, r.Date, r.Description, r.Recurring,
		r.RecurringType, r.Frequency, r.Interval, r.EndRepeat, r.EndDate,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	query := `
		INSERT INTO expenses (id, user_id, amount, currency, category, expense_date, description, recurring,
		                      recurring_type, frequency, repeat_interval, end_repeat, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + expenseColumns

	args := append([]any{uuid.NewString()}, recordArgs(e.Record())...)

	created, err := scanExpense(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, queryError("create expense", err)
	}
	return created, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, userID int64, id string) (*expense.Expense, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, expense.ErrExpenseNotFound
	}

	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE id = $1 AND user_id = $2
	`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, expense.ErrExpenseNotFound
	}
	if err != nil {
		return nil, queryError("get expense", err)
	}
	return e, nil
}

func (r *ExpenseRepository) ListByUserID(ctx context.Context, userID int64) ([]*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1
		ORDER BY expense_date ASC, created_at ASC, id ASC
	`
	return r.list(ctx, query, userID)
}

func (r *ExpenseRepository) ListByUserIDAndDateRange(ctx context.Context, userID int64, start, end expense.Date) ([]*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1 AND expense_date >= $2 AND expense_date < $3
		ORDER BY expense_date ASC, created_at ASC, id ASC
	`
	return r.list(ctx, query, userID, start.Time, end.Time)
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...any) ([]*expense.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("list expenses", err)
	}
	defer rows.Close()

	expenses := []*expense.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM expenses
		WHERE user_id = $1
		ORDER BY category ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, queryError("list categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *expense.Expense) (*expense.Expense, error) {
	if _, err := uuid.Parse(e.ID); err != nil {
		return nil, expense.ErrExpenseNotFound
	}

	query := `
		UPDATE expenses
		SET amount = $3,
		    currency = $4,
		    category = $5,
		    expense_date = $6,
		    description = $7,
		    recurring = $8,
		    recurring_type = $9,
		    frequency = $10,
		    repeat_interval = $11,
		    end_repeat = $12,
		    end_date = $13,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND id = $2
		RETURNING ` + expenseColumns

	rec := e.Record()
	args := recordArgs(rec)
	// recordArgs starts with user_id; splice the id in after it.
	args = append([]any{args[0], rec.ID}, args[1:]...)

	updated, err := scanExpense(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, expense.ErrExpenseNotFound
	}
	if err != nil {
		return nil, queryError("update expense", err)
	}
	return updated, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID int64, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return expense.ErrExpenseNotFound
	}

	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return queryError("delete expense", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return expense.ErrExpenseNotFound
	}

	return nil
}

// ListUserIDs returns every user that owns at least one expense.
func (r *ExpenseRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM expenses ORDER BY user_id`)
	if err != nil {
		return nil, queryError("list users", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListRecords returns the raw rows of a user without invariant checks, for
// auditing data written outside the service.
func (r *ExpenseRepository) ListRecords(ctx context.Context, userID int64) ([]expense.Record, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1
		ORDER BY expense_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, queryError("list expense records", err)
	}
	defer rows.Close()

	var records []expense.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
