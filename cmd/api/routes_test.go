package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/shared/config"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "routes-test-secret")
	t.Setenv("STORAGE_BACKEND", config.BackendMemory)
	t.Setenv("ALLOWED_HOSTS", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, err := NewDependencies(cfg, logger)
	if err != nil {
		t.Fatalf("NewDependencies() failed: %v", err)
	}
	t.Cleanup(deps.Close)

	token, err := deps.JWT.Generate(1, time.Hour)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	srv := httptest.NewServer(SetupRoutes(deps, cfg, logger))
	t.Cleanup(srv.Close)
	return srv, token
}

func do(t *testing.T, srv *httptest.Server, token, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("NewRequest() failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes_ExpenseLifecycle(t *testing.T) {
	srv, token := newTestServer(t)
	today := time.Now().UTC().Format("2006-01-02")

	resp := do(t, srv, token, http.MethodPost, "/expenses",
		`{"amount": 20, "category": "Food", "date": "`+today+`", "description": "lunch", "recurring": false}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /expenses status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var created struct {
		Expense struct {
			ID string `json:"id"`
		} `json:"expense"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	resp = do(t, srv, token, http.MethodGet, "/expenses/monthly", "")
	var monthly struct {
		Expenses []map[string]any `json:"expenses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&monthly); err != nil {
		t.Fatalf("decode monthly response: %v", err)
	}
	if len(monthly.Expenses) != 1 {
		t.Errorf("monthly expenses = %d, want 1", len(monthly.Expenses))
	}

	resp = do(t, srv, token, http.MethodPut, "/expenses/"+created.Expense.ID, `{"currency": "EUR"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PUT currency status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, srv, token, http.MethodDelete, "/expenses/"+created.Expense.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("DELETE status = %d, want 200", resp.StatusCode)
	}

	resp = do(t, srv, token, http.MethodDelete, "/expenses/"+created.Expense.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", resp.StatusCode)
	}
}

func TestRoutes_PublicAndProtected(t *testing.T) {
	srv, token := newTestServer(t)

	tests := []struct {
		name       string
		token      string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"health is public", "", http.MethodGet, "/health", http.StatusOK, `{"status":"ok"}`},
		{"expenses need a token", "", http.MethodGet, "/expenses", http.StatusUnauthorized, ""},
		{"categories", token, http.MethodGet, "/categories", http.StatusOK, `{"categories":[]}`},
		{"transactions is public", "", http.MethodGet, "/transactions", http.StatusOK, `{"message":"Transaction service active"}`},
		{"unknown route", token, http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.token, tt.method, tt.path, "")
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody == "" {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			if got := strings.TrimSpace(string(body)); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}
