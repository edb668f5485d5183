package expense

import (
	"sort"
	"time"
)

// MonthWindow returns the half-open window [start, end) covering the
// calendar month that contains t, in t's location.
func MonthWindow(t time.Time) (start, end Date) {
	start = NewDate(t.Year(), t.Month(), 1)
	return start, start.AddMonths(1)
}

// InWindow reports whether start <= d < end.
func InWindow(d, start, end Date) bool {
	return !d.Before(start) && d.Before(end)
}

// FilterWindow returns the expenses dated within [start, end), keeping order.
func FilterWindow(expenses []*Expense, start, end Date) []*Expense {
	out := make([]*Expense, 0, len(expenses))
	for _, e := range expenses {
		if InWindow(e.Date, start, end) {
			out = append(out, e)
		}
	}
	return out
}

// UniqueCategories returns each category once, sorted.
func UniqueCategories(expenses []*Expense) []string {
	names := make([]string, 0, len(expenses))
	for _, e := range expenses {
		names = append(names, e.Category)
	}
	return uniqueSorted(names)
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// SortExpenses orders expenses by date, then creation time, then id.
func SortExpenses(expenses []*Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
