package expense

import "github.com/shopspring/decimal"

// Fields that must be present on create. Currency is not listed: an absent
// currency falls back to the validator's default.
var requiredCreateFields = []string{"amount", "category", "date", "description", "recurring"}

// Amounts are kept exactly. They must stay below 10^15 in magnitude and use
// at most maxAmountScale fractional digits, ignoring trailing zeros.
var maxAmount = decimal.New(1, 15)

const maxAmountScale = 8

// Validator turns request payloads into normalised expenses. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	DefaultCurrency Currency
}

func (v Validator) defaultCurrency() Currency {
	if v.DefaultCurrency == "" {
		return DefaultCurrency
	}
	return v.DefaultCurrency
}

// Create validates a create payload for userID. The user id always comes
// from the caller; a user_id key in the payload is ignored.
func (v Validator) Create(p Payload, userID int64, today Date) (*Expense, error) {
	if missing := p.Missing(requiredCreateFields...); len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}

	currency := v.defaultCurrency()
	if p.Has("currency") {
		s, err := p.String("currency")
		if err != nil {
			return nil, ErrInvalidCurrency
		}
		if currency, err = ParseCurrency(s); err != nil {
			return nil, err
		}
	}

	date, err := parseDateField(p, "date")
	if err != nil {
		return nil, err
	}
	if date.After(today) {
		return nil, ErrFutureDateNotAllowed
	}

	endDate, hasEndDate, err := parseEndDate(p, date)
	if err != nil {
		return nil, err
	}

	recurring, err := p.Bool("recurring")
	if err != nil {
		return nil, err
	}

	e := &Expense{
		UserID:   userID,
		Currency: currency,
		Date:     date,
	}

	if recurring {
		schedule, err := createSchedule(p)
		if err != nil {
			return nil, err
		}
		end, err := endCondition(p, endDate, hasEndDate, nil)
		if err != nil {
			return nil, err
		}
		if e.Recurrence, err = NewRecurrence(schedule, end, date); err != nil {
			return nil, err
		}
	}

	if err := applyPlainFields(e, p); err != nil {
		return nil, err
	}
	return e, nil
}

// Edit merges an edit payload onto existing and returns the result. Only
// present fields are evaluated; existing is never modified. Recurrence
// fields are only considered when existing is already recurring.
func (v Validator) Edit(existing *Expense, p Payload, today Date) (*Expense, error) {
	w := existing.clone()

	if p.Has("date") {
		date, err := parseDateField(p, "date")
		if err != nil {
			return nil, err
		}
		if date.After(today) {
			return nil, ErrFutureDateNotAllowed
		}
		w.Date = date
	}

	endDate, hasEndDate, err := parseEndDate(p, w.Date)
	if err != nil {
		return nil, err
	}

	if existing.Recurring() {
		rec, err := editRecurrence(existing.Recurrence, p, w.Date, endDate, hasEndDate)
		if err != nil {
			return nil, err
		}
		w.Recurrence = rec
	}

	if err := applyPlainFields(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

func editRecurrence(stored *Recurrence, p Payload, start, endDate Date, hasEndDate bool) (*Recurrence, error) {
	current := stored.Schedule()

	// An interval edit needs a custom schedule to land on. The stored one is
	// checked first; a schedule switching to custom is checked below.
	interval, hasInterval := current.interval, false
	if current.IsCustom() && p.Has("interval") {
		n, err := parseInterval(p)
		if err != nil {
			return nil, err
		}
		interval, hasInterval = n, true
	}

	kind := current.Kind()
	switch {
	case p.Has("recurring_type"):
		parsed, err := parseEnumField(p, "recurring_type", ParseRecurringType)
		if err != nil {
			return nil, err
		}
		kind = parsed
	case p.Has("frequency") || p.Has("interval"):
		return nil, ErrInvalidRecurringType.forField("recurring_type").
			withMessage("recurring_type is required when changing frequency or interval")
	}

	var schedule Schedule
	if kind == RecurringCustom {
		if !p.Has("frequency") {
			return nil, ErrInvalidFrequency.forField("frequency")
		}
		freq, err := parseEnumField(p, "frequency", ParseFrequency)
		if err != nil {
			return nil, err
		}
		if !hasInterval && p.Has("interval") {
			if interval, err = parseInterval(p); err != nil {
				return nil, err
			}
		}
		if !current.IsCustom() && !p.Has("interval") {
			return nil, ErrCustomRecurrenceIncomplete
		}
		if schedule, err = Custom(freq, interval); err != nil {
			return nil, err
		}
	} else {
		schedule, _ = Simple(kind)
	}

	end, err := endCondition(p, endDate, hasEndDate, stored)
	if err != nil {
		return nil, err
	}
	return NewRecurrence(schedule, end, start)
}

// createSchedule reads recurring_type and, for custom schedules, frequency
// and interval from a create payload.
func createSchedule(p Payload) (Schedule, error) {
	if !p.Has("recurring_type") {
		return Schedule{}, ErrInvalidRecurringType.forField("recurring_type")
	}
	kind, err := parseEnumField(p, "recurring_type", ParseRecurringType)
	if err != nil {
		return Schedule{}, err
	}
	if kind != RecurringCustom {
		// frequency and interval only describe custom schedules
		return Simple(kind)
	}

	if missing := p.Missing("frequency", "interval"); len(missing) > 0 {
		return Schedule{}, &ValidationError{
			Code:    CodeCustomRecurrenceIncomplete,
			Message: ErrCustomRecurrenceIncomplete.Message,
			Fields:  missing,
		}
	}
	freq, err := parseEnumField(p, "frequency", ParseFrequency)
	if err != nil {
		return Schedule{}, err
	}
	interval, err := parseInterval(p)
	if err != nil {
		return Schedule{}, err
	}
	return Custom(freq, interval)
}

// endCondition reads end_repeat. For on_date the end date comes from the
// payload when given, otherwise from the stored recurrence (edits only).
func endCondition(p Payload, endDate Date, hasEndDate bool, stored *Recurrence) (EndCondition, error) {
	if !p.Has("end_repeat") {
		return EndCondition{}, ErrEndRepeatRequired.forField("end_repeat")
	}
	repeat, err := parseEnumField(p, "end_repeat", ParseEndRepeat)
	if err != nil {
		return EndCondition{}, err
	}

	if repeat == EndRepeatNever {
		return EndNever(), nil
	}
	if !hasEndDate && stored != nil {
		endDate, hasEndDate = stored.End().Date()
	}
	if !hasEndDate {
		return EndCondition{}, ErrEndDateRequired.forField("end_date")
	}
	return EndOnDate(endDate)
}

func parseDateField(p Payload, key string) (Date, error) {
	invalid := ErrInvalidDateFormat.forField(key)
	if key != "date" {
		invalid = invalid.withMessage("Invalid " + key + " format. Use YYYY-MM-DD")
	}

	s, err := p.String(key)
	if err != nil {
		return Date{}, invalid
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, invalid
	}
	return d, nil
}

// parseEndDate reads an optional end_date and checks it against start.
func parseEndDate(p Payload, start Date) (Date, bool, error) {
	if !p.Has("end_date") {
		return Date{}, false, nil
	}
	d, err := parseDateField(p, "end_date")
	if err != nil {
		return Date{}, false, err
	}
	if d.Before(start) {
		return Date{}, false, ErrEndDateBeforeStartDate.forField("end_date")
	}
	return d, true, nil
}

func parseInterval(p Payload) (int, error) {
	n, err := p.Int("interval")
	if err != nil || n <= 0 {
		return 0, ErrInvalidInterval.forField("interval")
	}
	return n, nil
}

func parseEnumField[T ~string](p Payload, key string, parse func(string) (T, error)) (T, error) {
	var zero T
	s, err := p.String(key)
	if err != nil {
		_, unrecognized := parse("")
		if ve, ok := AsValidationError(unrecognized); ok {
			return zero, ve.forField(key)
		}
		return zero, err
	}
	v, err := parse(s)
	if err != nil {
		if ve, ok := AsValidationError(err); ok {
			return zero, ve.forField(key)
		}
		return zero, err
	}
	return v, nil
}

// applyPlainFields copies category, amount and description when present.
func applyPlainFields(e *Expense, p Payload) error {
	if p.Has("category") {
		s, err := p.String("category")
		if err != nil {
			return err
		}
		e.Category = s
	}
	if p.Has("amount") {
		d, err := p.Decimal("amount")
		if err != nil {
			return err
		}
		if d.Abs().Cmp(maxAmount) >= 0 || !d.Equal(d.Truncate(maxAmountScale)) {
			return ErrInvalidFieldValue.forField("amount").withMessage("Amount is out of range")
		}
		e.Amount = d
	}
	if p.Has("description") {
		s, err := p.String("description")
		if err != nil {
			return err
		}
		e.Description = s
	}
	return nil
}
