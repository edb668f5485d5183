package expense

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func timePtr(t time.Time) *time.Time {
	return &t
}

func TestRecordRoundTrip(t *testing.T) {
	schedule, _ := Custom(FrequencyMonthly, 2)
	end, _ := EndOnDate(NewDate(2024, time.December, 1))
	rec, err := NewRecurrence(schedule, end, NewDate(2024, time.January, 15))
	if err != nil {
		t.Fatalf("NewRecurrence() failed: %v", err)
	}

	e := &Expense{
		ID:         "exp-1",
		UserID:     3,
		Amount:     decimal.RequireFromString("12.30"),
		Currency:   "EUR",
		Category:   "Rent",
		Date:       NewDate(2024, time.January, 15),
		Recurrence: rec,
	}

	got, err := Restore(e.Record())
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	s := got.Recurrence.Schedule()
	if n, _ := s.Interval(); n != 2 {
		t.Errorf("Interval = %d, want 2", n)
	}
	if d, ok := got.Recurrence.End().Date(); !ok || d.String() != "2024-12-01" {
		t.Errorf("end = %s/%v", d, ok)
	}
	if !got.Amount.Equal(e.Amount) || got.Currency != "EUR" || got.Category != "Rent" {
		t.Errorf("restored = %+v", got)
	}
}

func TestRestore_Invariants(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	base := func() Record {
		return Record{ID: "exp-1", UserID: 1, Currency: "GBP", Category: "Food", Date: date}
	}

	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr bool
	}{
		{"one-off", func(r *Record) {}, false},
		{"unknown currency", func(r *Record) { r.Currency = "XYZ" }, true},
		{"one-off with end date", func(r *Record) { r.EndDate = timePtr(date) }, true},
		{"recurring without type", func(r *Record) {
			r.Recurring = true
			r.EndRepeat = strPtr("never")
		}, true},
		{"simple with interval", func(r *Record) {
			r.Recurring = true
			r.RecurringType = strPtr("weekly")
			r.Interval = intPtr(2)
			r.EndRepeat = strPtr("never")
		}, true},
		{"custom without interval", func(r *Record) {
			r.Recurring = true
			r.RecurringType = strPtr("custom")
			r.Frequency = strPtr("daily")
			r.EndRepeat = strPtr("never")
		}, true},
		{"never with end date", func(r *Record) {
			r.Recurring = true
			r.RecurringType = strPtr("weekly")
			r.EndRepeat = strPtr("never")
			r.EndDate = timePtr(date)
		}, true},
		{"on_date before date", func(r *Record) {
			r.Recurring = true
			r.RecurringType = strPtr("weekly")
			r.EndRepeat = strPtr("on_date")
			r.EndDate = timePtr(date.AddDate(0, 0, -1))
		}, true},
		{"valid custom", func(r *Record) {
			r.Recurring = true
			r.RecurringType = strPtr("custom")
			r.Frequency = strPtr("daily")
			r.Interval = intPtr(10)
			r.EndRepeat = strPtr("on_date")
			r.EndDate = timePtr(date.AddDate(0, 2, 0))
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(&r)
			_, err := Restore(r)
			if tt.wantErr {
				if !errors.Is(err, ErrCorruptRecord) {
					t.Errorf("Restore() error = %v, want ErrCorruptRecord", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Restore() unexpected error: %v", err)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.February, 29)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() failed: %v", err)
	}
	if string(data) != `"2024-02-29"` {
		t.Errorf("MarshalJSON() = %s", data)
	}

	var back Date
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() failed: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}

	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Error("ParseDate() accepted a day that does not exist")
	}
}

func TestParseCurrency(t *testing.T) {
	if c, err := ParseCurrency("usd"); err != nil || c != "USD" {
		t.Errorf("ParseCurrency(usd) = %s, %v", c, err)
	}
	if _, err := ParseCurrency("US"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("ParseCurrency(US) error = %v", err)
	}
	if len(Currencies()) != len(currencies) {
		t.Errorf("Currencies() returned %d codes", len(Currencies()))
	}
}
