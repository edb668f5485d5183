package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/domain/expense"
	"fintrack/internal/shared/logging"
	"fintrack/internal/shared/middleware"
)

const maxBodyBytes = 1 << 20

type ExpenseHandler struct {
	service *expense.Service
}

func NewExpenseHandler(service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Request/Response DTOs

type ExpenseResponse struct {
	ID            string      `json:"id"`
	UserID        int64       `json:"user_id"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	Category      string      `json:"category"`
	Date          string      `json:"date"`
	Description   string      `json:"description"`
	Recurring     bool        `json:"recurring"`
	RecurringType *string     `json:"recurring_type"`
	Frequency     *string     `json:"frequency"`
	Interval      *int        `json:"interval"`
	EndRepeat     *string     `json:"end_repeat"`
	EndDate       *string     `json:"end_date"`
}

type ExpenseEnvelope struct {
	Message string          `json:"message"`
	Expense ExpenseResponse `json:"expense"`
}

type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

func toExpenseResponse(e *expense.Expense) ExpenseResponse {
	rec := e.Record()
	resp := ExpenseResponse{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Amount:        json.Number(rec.Amount.String()),
		Currency:      rec.Currency,
		Category:      rec.Category,
		Date:          e.Date.String(),
		Description:   rec.Description,
		Recurring:     rec.Recurring,
		RecurringType: rec.RecurringType,
		Frequency:     rec.Frequency,
		Interval:      rec.Interval,
		EndRepeat:     rec.EndRepeat,
	}
	if rec.EndDate != nil {
		s := expense.DateOf(*rec.EndDate).String()
		resp.EndDate = &s
	}
	return resp
}

func toExpenseList(expenses []*expense.Expense) ExpenseListResponse {
	out := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return ExpenseListResponse{Expenses: out}
}

// HandleExpenses routes requests to the appropriate handler based on method
func (h *ExpenseHandler) HandleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListExpenses(w, r)
	case http.MethodPost:
		h.handleCreateExpense(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// HandleExpenseByID routes requests for a specific expense
func (h *ExpenseHandler) HandleExpenseByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.handleUpdateExpense(w, r)
	case http.MethodDelete:
		h.handleDeleteExpense(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (h *ExpenseHandler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	expenses, err := h.service.ListExpenses(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseList(expenses))
}

func (h *ExpenseHandler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	p, ok := readPayload(w, r)
	if !ok {
		return
	}

	e, err := h.service.CreateExpense(r.Context(), userID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "expense created",
		logging.FieldUserID, userID,
		logging.FieldExpenseID, e.ID,
	)
	writeJSON(w, http.StatusCreated, ExpenseEnvelope{Message: "Expense added", Expense: toExpenseResponse(e)})
}

func (h *ExpenseHandler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	expenseID := r.PathValue("id")

	p, ok := readPayload(w, r)
	if !ok {
		return
	}

	// The currency of a stored expense is fixed at creation.
	if _, present := p["currency"]; present {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "Currency field cannot be updated",
			Code:   string(expense.CodeInvalidFieldValue),
			Fields: []string{"currency"},
		})
		return
	}

	e, err := h.service.EditExpense(r.Context(), userID, expenseID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExpenseEnvelope{Message: "Expense updated successfully", Expense: toExpenseResponse(e)})
}

func (h *ExpenseHandler) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	if err := h.service.DeleteExpense(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}

// HandleMonthly returns the expenses of the current month, or of the month
// named by ?month=YYYY-MM.
func (h *ExpenseHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	var ref time.Time
	if month := r.URL.Query().Get("month"); month != "" {
		t, err := time.ParseInLocation("2006-01", month, h.service.Location())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  "Invalid month format. Use YYYY-MM",
				Code:   string(expense.CodeInvalidDateFormat),
				Fields: []string{"month"},
			})
			return
		}
		ref = t
	}

	expenses, err := h.service.MonthlyExpenses(r.Context(), userID, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseList(expenses))
}

func (h *ExpenseHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	userID, _ := middleware.UserID(r.Context())

	categories, err := h.service.Categories(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func readPayload(w http.ResponseWriter, r *http.Request) (expense.Payload, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large", Code: "invalid_body"})
		return nil, false
	}
	p, err := expense.ParsePayload(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "invalid_body"})
		return nil, false
	}
	return p, true
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := expense.AsValidationError(err); ok {
		slog.DebugContext(r.Context(), "expense rejected", logging.FieldCode, ve.Code, "fields", ve.Fields)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Message, Code: string(ve.Code), Fields: ve.Fields})
		return
	}

	switch {
	case errors.Is(err, expense.ErrExpenseNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Expense not found", Code: "not_found"})
	case errors.Is(err, expense.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "User authentication failed", Code: "unauthenticated"})
	default:
		slog.ErrorContext(r.Context(), "expense request failed",
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
			logging.FieldError, err,
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: "storage_unavailable"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed", Code: "method_not_allowed"})
}
