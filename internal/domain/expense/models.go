package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one logged transaction owned by a user.
type Expense struct {
	ID          string
	UserID      int64
	Amount      decimal.Decimal
	Currency    Currency
	Category    string
	Date        Date
	Description string
	Recurrence  *Recurrence
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Recurring reports whether the expense carries a recurrence rule.
func (e *Expense) Recurring() bool {
	return e.Recurrence != nil
}

// clone returns a shallow copy. Recurrence is immutable so sharing it is safe.
func (e *Expense) clone() *Expense {
	c := *e
	return &c
}

// Record is the flat persisted shape of an expense. Optional recurrence
// columns are nil when absent.
type Record struct {
	ID            string
	UserID        int64
	Amount        decimal.Decimal
	Currency      string
	Category      string
	Date          time.Time
	Description   string
	Recurring     bool
	RecurringType *string
	Frequency     *string
	Interval      *int
	EndRepeat     *string
	EndDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Record flattens e into its persisted shape.
func (e *Expense) Record() Record {
	r := Record{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Currency:    string(e.Currency),
		Category:    e.Category,
		Date:        e.Date.Time,
		Description: e.Description,
		Recurring:   e.Recurring(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Recurrence == nil {
		return r
	}

	s := e.Recurrence.Schedule()
	kind := string(s.Kind())
	r.RecurringType = &kind
	if freq, ok := s.Frequency(); ok {
		f := string(freq)
		r.Frequency = &f
	}
	if interval, ok := s.Interval(); ok {
		r.Interval = &interval
	}

	end := e.Recurrence.End()
	repeat := string(end.Repeat())
	r.EndRepeat = &repeat
	if d, ok := end.Date(); ok {
		t := d.Time
		r.EndDate = &t
	}
	return r
}

// Restore rebuilds an Expense from a persisted row, checking the recurrence
// invariants. Rows that violate them yield an error wrapping ErrCorruptRecord.
func Restore(r Record) (*Expense, error) {
	corrupt := func(reason string) error {
		return fmt.Errorf("%w: expense %s: %s", ErrCorruptRecord, r.ID, reason)
	}

	currency, err := ParseCurrency(r.Currency)
	if err != nil {
		return nil, corrupt(fmt.Sprintf("unknown currency %q", r.Currency))
	}

	e := &Expense{
		ID:          r.ID,
		UserID:      r.UserID,
		Amount:      r.Amount,
		Currency:    currency,
		Category:    r.Category,
		Date:        DateOf(r.Date),
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if !r.Recurring {
		if r.RecurringType != nil || r.Frequency != nil || r.Interval != nil || r.EndRepeat != nil || r.EndDate != nil {
			return nil, corrupt("recurrence fields set on a one-off expense")
		}
		return e, nil
	}

	if r.RecurringType == nil {
		return nil, corrupt("recurring expense without recurring_type")
	}
	kind, err := ParseRecurringType(*r.RecurringType)
	if err != nil {
		return nil, corrupt(fmt.Sprintf("unknown recurring_type %q", *r.RecurringType))
	}

	var schedule Schedule
	if kind == RecurringCustom {
		if r.Frequency == nil || r.Interval == nil {
			return nil, corrupt("custom recurrence without frequency and interval")
		}
		freq, err := ParseFrequency(*r.Frequency)
		if err != nil {
			return nil, corrupt(fmt.Sprintf("unknown frequency %q", *r.Frequency))
		}
		if schedule, err = Custom(freq, *r.Interval); err != nil {
			return nil, corrupt(err.Error())
		}
	} else {
		if r.Frequency != nil || r.Interval != nil {
			return nil, corrupt("frequency or interval set on a non-custom recurrence")
		}
		schedule, _ = Simple(kind)
	}

	if r.EndRepeat == nil {
		return nil, corrupt("recurring expense without end_repeat")
	}
	repeat, err := ParseEndRepeat(*r.EndRepeat)
	if err != nil {
		return nil, corrupt(fmt.Sprintf("unknown end_repeat %q", *r.EndRepeat))
	}

	end := EndNever()
	switch repeat {
	case EndRepeatNever:
		if r.EndDate != nil {
			return nil, corrupt("end_date set while end_repeat is never")
		}
	case EndRepeatOnDate:
		if r.EndDate == nil {
			return nil, corrupt("end_repeat is on_date without end_date")
		}
		end, _ = EndOnDate(DateOf(*r.EndDate))
	}

	e.Recurrence, err = NewRecurrence(schedule, end, e.Date)
	if err != nil {
		return nil, corrupt(err.Error())
	}
	return e, nil
}
