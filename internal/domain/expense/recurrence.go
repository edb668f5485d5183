package expense

import "strings"

// RecurringType is the repetition pattern of a recurring expense.
type RecurringType string

const (
	RecurringDaily         RecurringType = "daily"
	RecurringWeekly        RecurringType = "weekly"
	RecurringEveryTwoWeeks RecurringType = "every_two_weeks"
	RecurringMonthly       RecurringType = "monthly"
	RecurringYearly        RecurringType = "yearly"
	RecurringCustom        RecurringType = "custom"
)

var recurringTypes = []RecurringType{
	RecurringDaily, RecurringWeekly, RecurringEveryTwoWeeks,
	RecurringMonthly, RecurringYearly, RecurringCustom,
}

// Frequency is the base unit of a custom recurrence.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

var frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

// EndRepeat says whether a recurrence stops.
type EndRepeat string

const (
	EndRepeatNever  EndRepeat = "never"
	EndRepeatOnDate EndRepeat = "on_date"
)

var endRepeats = []EndRepeat{EndRepeatNever, EndRepeatOnDate}

// parseEnum matches s case-insensitively against the members of an enum.
func parseEnum[T ~string](s string, members []T, unrecognized *ValidationError) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range members {
		if string(m) == s {
			return m, nil
		}
	}
	var zero T
	return zero, unrecognized
}

func ParseRecurringType(s string) (RecurringType, error) {
	return parseEnum(s, recurringTypes, ErrInvalidRecurringType)
}

func ParseFrequency(s string) (Frequency, error) {
	return parseEnum(s, frequencies, ErrInvalidFrequency)
}

func ParseEndRepeat(s string) (EndRepeat, error) {
	return parseEnum(s, endRepeats, ErrInvalidEndRepeat)
}

// Schedule is either a simple pattern (daily, weekly, ...) or a custom
// frequency with a positive interval. The zero Schedule is not valid and is
// rejected by NewRecurrence.
type Schedule struct {
	kind      RecurringType
	frequency Frequency
	interval  int
}

// Simple returns a schedule for one of the predefined patterns.
func Simple(kind RecurringType) (Schedule, error) {
	if kind == RecurringCustom {
		return Schedule{}, ErrCustomRecurrenceIncomplete
	}
	if _, err := ParseRecurringType(string(kind)); err != nil {
		return Schedule{}, err
	}
	return Schedule{kind: kind}, nil
}

// Custom returns a schedule repeating every interval units of freq.
func Custom(freq Frequency, interval int) (Schedule, error) {
	if _, err := ParseFrequency(string(freq)); err != nil {
		return Schedule{}, err
	}
	if interval <= 0 {
		return Schedule{}, ErrInvalidInterval
	}
	return Schedule{kind: RecurringCustom, frequency: freq, interval: interval}, nil
}

func (s Schedule) Kind() RecurringType { return s.kind }

func (s Schedule) IsCustom() bool { return s.kind == RecurringCustom }

// Frequency returns the custom frequency. ok is false for simple schedules.
func (s Schedule) Frequency() (freq Frequency, ok bool) {
	return s.frequency, s.IsCustom()
}

// Interval returns the custom interval. ok is false for simple schedules.
func (s Schedule) Interval() (interval int, ok bool) {
	return s.interval, s.IsCustom()
}

// EndCondition is Never or OnDate(date). The zero value is Never.
type EndCondition struct {
	onDate bool
	date   Date
}

func EndNever() EndCondition {
	return EndCondition{}
}

// EndOnDate ends the recurrence on d, which must be set.
func EndOnDate(d Date) (EndCondition, error) {
	if d.IsZero() {
		return EndCondition{}, ErrEndDateRequired
	}
	return EndCondition{onDate: true, date: d}, nil
}

func (e EndCondition) Repeat() EndRepeat {
	if e.onDate {
		return EndRepeatOnDate
	}
	return EndRepeatNever
}

// Date returns the final date. ok is false for Never.
func (e EndCondition) Date() (d Date, ok bool) {
	return e.date, e.onDate
}

// Recurrence describes how an expense repeats. It is immutable; a recurring
// expense holds a non-nil *Recurrence and a one-off expense holds nil.
type Recurrence struct {
	schedule Schedule
	end      EndCondition
}

// NewRecurrence combines a schedule and an end condition for an expense
// dated start. An OnDate end must not precede start.
func NewRecurrence(schedule Schedule, end EndCondition, start Date) (*Recurrence, error) {
	if schedule.kind == "" {
		return nil, ErrInvalidRecurringType
	}
	if d, ok := end.Date(); ok && d.Before(start) {
		return nil, ErrEndDateBeforeStartDate
	}
	return &Recurrence{schedule: schedule, end: end}, nil
}

func (r *Recurrence) Schedule() Schedule { return r.schedule }

func (r *Recurrence) End() EndCondition { return r.end }
