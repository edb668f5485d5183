package expense

import (
	"errors"
	"testing"
	"time"
)

func TestParseEnums(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (string, error)
		input   string
		want    string
		wantErr error
	}{
		{"recurring type lower", wrap(ParseRecurringType), "weekly", "weekly", nil},
		{"recurring type mixed case", wrap(ParseRecurringType), "Every_Two_Weeks", "every_two_weeks", nil},
		{"recurring type padded", wrap(ParseRecurringType), "  monthly ", "monthly", nil},
		{"recurring type unknown", wrap(ParseRecurringType), "fortnightly", "", ErrInvalidRecurringType},
		{"recurring type empty", wrap(ParseRecurringType), "", "", ErrInvalidRecurringType},
		{"frequency upper", wrap(ParseFrequency), "YEARLY", "yearly", nil},
		{"frequency every_two_weeks is not a frequency", wrap(ParseFrequency), "every_two_weeks", "", ErrInvalidFrequency},
		{"end repeat on_date", wrap(ParseEndRepeat), "ON_DATE", "on_date", nil},
		{"end repeat unknown", wrap(ParseEndRepeat), "after", "", ErrInvalidEndRepeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func wrap[T ~string](parse func(string) (T, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		v, err := parse(s)
		return string(v), err
	}
}

func TestScheduleConstructors(t *testing.T) {
	if _, err := Simple(RecurringCustom); !errors.Is(err, ErrCustomRecurrenceIncomplete) {
		t.Errorf("Simple(custom) error = %v", err)
	}
	if _, err := Simple("hourly"); !errors.Is(err, ErrInvalidRecurringType) {
		t.Errorf("Simple(hourly) error = %v", err)
	}
	if _, err := Custom(FrequencyWeekly, 0); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("Custom(weekly, 0) error = %v", err)
	}
	if _, err := Custom("fortnightly", 2); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Custom(fortnightly, 2) error = %v", err)
	}

	s, err := Simple(RecurringMonthly)
	if err != nil {
		t.Fatalf("Simple(monthly) failed: %v", err)
	}
	if _, ok := s.Frequency(); ok {
		t.Error("simple schedule reports a frequency")
	}
	if _, ok := s.Interval(); ok {
		t.Error("simple schedule reports an interval")
	}
}

func TestNewRecurrence(t *testing.T) {
	start := NewDate(2024, time.January, 15)
	weekly, _ := Simple(RecurringWeekly)

	if _, err := NewRecurrence(Schedule{}, EndNever(), start); !errors.Is(err, ErrInvalidRecurringType) {
		t.Errorf("zero schedule error = %v", err)
	}

	before, _ := EndOnDate(NewDate(2024, time.January, 14))
	if _, err := NewRecurrence(weekly, before, start); !errors.Is(err, ErrEndDateBeforeStartDate) {
		t.Errorf("end before start error = %v", err)
	}

	sameDay, _ := EndOnDate(start)
	r, err := NewRecurrence(weekly, sameDay, start)
	if err != nil {
		t.Fatalf("end on start date should be accepted: %v", err)
	}
	if r.End().Repeat() != EndRepeatOnDate {
		t.Errorf("Repeat = %s, want on_date", r.End().Repeat())
	}

	if _, err := EndOnDate(Date{}); !errors.Is(err, ErrEndDateRequired) {
		t.Errorf("EndOnDate(zero) error = %v", err)
	}
	if EndNever().Repeat() != EndRepeatNever {
		t.Error("EndNever should repeat never")
	}
}
