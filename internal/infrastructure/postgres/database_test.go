package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"

	"fintrack/internal/domain/expense"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"placeholders kept", "SELECT id FROM expenses WHERE user_id = $1", "SELECT id FROM expenses WHERE user_id = $1"},
		{"string literal", "SELECT 1 FROM t WHERE a = 'secret'", "SELECT ? FROM t WHERE a = '?'"},
		{"escaped quote", "WHERE note = 'it''s' AND x = $2", "WHERE note = '?' AND x = $2"},
		{"numbers", "LIMIT 10 OFFSET 2.5", "LIMIT ? OFFSET ?"},
		{"identifiers with digits", "SELECT col1 FROM t2", "SELECT col1 FROM t2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redact(tt.query); got != tt.want {
				t.Errorf("redact() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedact_Truncates(t *testing.T) {
	got := redact("SELECT " + strings.Repeat("x", 400))
	if len(got) != 256+len("...") || !strings.HasSuffix(got, "...") {
		t.Errorf("redact() length = %d", len(got))
	}
}

func TestSQLVerb(t *testing.T) {
	if got := sqlVerb("\n\t  select id from expenses"); got != "SELECT" {
		t.Errorf("sqlVerb() = %q, want SELECT", got)
	}
	if got := sqlVerb("   "); got != "" {
		t.Errorf("sqlVerb(blank) = %q, want empty", got)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"conn done", fmt.Errorf("query: %w", sql.ErrConnDone), true},
		{"deadline", context.DeadlineExceeded, true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryError(t *testing.T) {
	if err := queryError("list expenses", &pq.Error{Code: "08001"}); !errors.Is(err, expense.ErrStorageUnavailable) {
		t.Errorf("queryError(connection) = %v, want ErrStorageUnavailable", err)
	}
	if err := queryError("list expenses", &pq.Error{Code: "42P01"}); errors.Is(err, expense.ErrStorageUnavailable) {
		t.Errorf("queryError(statement) = %v, should not be a storage outage", err)
	}
}
