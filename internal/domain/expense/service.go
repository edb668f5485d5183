package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	expenseMeter            = otel.Meter("fintrack/expense")
	validationRejections, _ = expenseMeter.Int64Counter("expense.validation.rejections",
		metric.WithDescription("Expense payloads rejected by validation"),
	)
)

// Service contains the business logic for expense operations
type Service struct {
	repo      Repository
	validator Validator
	location  *time.Location
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultCurrency sets the currency used when a create payload omits one.
func WithDefaultCurrency(c Currency) Option {
	return func(s *Service) { s.validator.DefaultCurrency = c }
}

// WithLocation sets the time zone in which "today" and months are observed.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new expense service
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		validator: Validator{DefaultCurrency: DefaultCurrency},
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the time zone in which days and months are observed.
func (s *Service) Location() *time.Location {
	return s.location
}

// Today returns the current calendar date in the service's location.
func (s *Service) Today() Date {
	return DateOf(s.now().In(s.location))
}

// CreateExpense validates the payload and stores a new expense owned by userID.
func (s *Service) CreateExpense(ctx context.Context, userID int64, p Payload) (*Expense, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	e, err := s.validator.Create(p, userID, s.Today())
	if err != nil {
		s.recordRejection(ctx, "create", err)
		return nil, err
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, storageError(err)
	}
	return created, nil
}

// EditExpense applies an edit payload to an expense owned by userID.
func (s *Service) EditExpense(ctx context.Context, userID int64, id string, p Payload) (*Expense, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, storageError(err)
	}

	updated, err := s.validator.Edit(existing, p, s.Today())
	if err != nil {
		s.recordRejection(ctx, "edit", err)
		return nil, err
	}

	stored, err := s.repo.Update(ctx, updated)
	if err != nil {
		return nil, storageError(err)
	}
	return stored, nil
}

// DeleteExpense removes an expense owned by userID.
func (s *Service) DeleteExpense(ctx context.Context, userID int64, id string) error {
	if userID <= 0 {
		return ErrUnauthenticated
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return storageError(err)
	}
	return nil
}

// ListExpenses returns every expense owned by userID.
func (s *Service) ListExpenses(ctx context.Context, userID int64) ([]*Expense, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	expenses, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if expenses == nil {
		expenses = []*Expense{}
	}
	return expenses, nil
}

// MonthlyExpenses returns the expenses dated in the calendar month that
// contains now. A zero now means the service clock.
func (s *Service) MonthlyExpenses(ctx context.Context, userID int64, now time.Time) ([]*Expense, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if now.IsZero() {
		now = s.now()
	}

	start, end := MonthWindow(now.In(s.location))
	expenses, err := s.repo.ListByUserIDAndDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, storageError(err)
	}
	if expenses == nil {
		expenses = []*Expense{}
	}
	return expenses, nil
}

// Categories returns the distinct categories used by userID, sorted.
func (s *Service) Categories(ctx context.Context, userID int64) ([]string, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return uniqueSorted(categories), nil
}

func (s *Service) recordRejection(ctx context.Context, op string, err error) {
	code := "unknown"
	if ve, ok := AsValidationError(err); ok {
		code = string(ve.Code)
	}
	validationRejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("code", code),
	))
}

// storageError passes not-found through and marks everything else as a
// storage failure.
func storageError(err error) error {
	if errors.Is(err, ErrExpenseNotFound) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
