package expense

import (
	"errors"
	"strings"
)

// Code identifies the kind of a validation failure. Codes are stable and are
// rendered to clients next to the human readable message.
type Code string

const (
	CodeMissingFields              Code = "missing_fields"
	CodeInvalidCurrency            Code = "invalid_currency"
	CodeInvalidDateFormat          Code = "invalid_date_format"
	CodeFutureDateNotAllowed       Code = "future_date_not_allowed"
	CodeEndDateBeforeStartDate     Code = "end_date_before_start_date"
	CodeCustomRecurrenceIncomplete Code = "custom_recurrence_incomplete"
	CodeInvalidInterval            Code = "invalid_interval"
	CodeInvalidRecurringType       Code = "invalid_recurring_type"
	CodeInvalidFrequency           Code = "invalid_frequency"
	CodeInvalidEndRepeat           Code = "invalid_end_repeat"
	CodeEndRepeatRequired          Code = "end_repeat_required"
	CodeEndDateRequired            Code = "end_date_required"
	CodeInvalidFieldValue          Code = "invalid_field_value"
)

// ValidationError is returned when a payload does not describe a valid
// expense. Two validation errors match under errors.Is when their codes are
// equal, so callers can compare against the Err* sentinels below.
type ValidationError struct {
	Code    Code
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// forField returns a copy of e bound to the given payload field.
func (e *ValidationError) forField(field string) *ValidationError {
	return &ValidationError{Code: e.Code, Message: e.Message, Fields: []string{field}}
}

// withMessage returns a copy of e carrying a more specific message.
func (e *ValidationError) withMessage(msg string) *ValidationError {
	return &ValidationError{Code: e.Code, Message: msg, Fields: e.Fields}
}

// Validation sentinels
var (
	ErrMissingFields              = &ValidationError{Code: CodeMissingFields, Message: "Missing required fields"}
	ErrInvalidCurrency            = &ValidationError{Code: CodeInvalidCurrency, Message: "Invalid currency code"}
	ErrInvalidDateFormat          = &ValidationError{Code: CodeInvalidDateFormat, Message: "Invalid date format. Use YYYY-MM-DD"}
	ErrFutureDateNotAllowed       = &ValidationError{Code: CodeFutureDateNotAllowed, Message: "Expense date cannot be in the future"}
	ErrEndDateBeforeStartDate     = &ValidationError{Code: CodeEndDateBeforeStartDate, Message: "End date must be after the expense date"}
	ErrCustomRecurrenceIncomplete = &ValidationError{Code: CodeCustomRecurrenceIncomplete, Message: "Custom recurrence requires frequency and interval"}
	ErrInvalidInterval            = &ValidationError{Code: CodeInvalidInterval, Message: "Interval must be a positive number"}
	ErrInvalidRecurringType       = &ValidationError{Code: CodeInvalidRecurringType, Message: "Invalid recurring type"}
	ErrInvalidFrequency           = &ValidationError{Code: CodeInvalidFrequency, Message: "Invalid frequency"}
	ErrInvalidEndRepeat           = &ValidationError{Code: CodeInvalidEndRepeat, Message: "Invalid end_repeat value"}
	ErrEndRepeatRequired          = &ValidationError{Code: CodeEndRepeatRequired, Message: "end_repeat is required"}
	ErrEndDateRequired            = &ValidationError{Code: CodeEndDateRequired, Message: "end_date is required when end_repeat is on_date"}
	ErrInvalidFieldValue          = &ValidationError{Code: CodeInvalidFieldValue, Message: "Invalid value provided"}
)

// Collaborator errors
var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrUnauthenticated    = errors.New("user authentication failed")
	ErrStorageUnavailable = errors.New("expense storage unavailable")
	ErrCorruptRecord      = errors.New("stored expense violates record invariants")
)

func missingFieldsError(fields []string) *ValidationError {
	return &ValidationError{
		Code:    CodeMissingFields,
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// AsValidationError reports whether err is a validation failure and returns it.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
