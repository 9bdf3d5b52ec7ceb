// Package errors provides the error taxonomy of the planning engine.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies precondition failures. Solver outcomes (infeasible, timeout)
// are not errors and are carried in the planning result instead.
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"

	// Planning preconditions.
	CodeUnknownEmployee  Code = "UNKNOWN_EMPLOYEE"
	CodeUnknownTeam      Code = "UNKNOWN_TEAM"
	CodeUnknownShiftType Code = "UNKNOWN_SHIFT_TYPE"
	CodeInvalidDateRange Code = "INVALID_DATE_RANGE"

	// Storage.
	CodeDatabaseError Code = "DATABASE_ERROR"
)

// AppError carries a code alongside the message so callers can branch on it.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates a coded error.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the code from err, or CodeUnknown.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// UnknownEmployee reports a reference to an employee that was not loaded.
func UnknownEmployee(ref string) *AppError {
	return New(CodeUnknownEmployee, fmt.Sprintf("unknown employee reference %q", ref))
}

// UnknownTeam reports a reference to a team that was not loaded.
func UnknownTeam(ref string) *AppError {
	return New(CodeUnknownTeam, fmt.Sprintf("unknown team reference %q", ref))
}

// UnknownShiftType reports a shift code with no configuration.
func UnknownShiftType(code string) *AppError {
	return New(CodeUnknownShiftType, fmt.Sprintf("unknown shift type %q", code))
}

// InvalidDateRange reports a malformed or inverted planning range.
func InvalidDateRange(start, end string) *AppError {
	return New(CodeInvalidDateRange, fmt.Sprintf("invalid date range %s..%s", start, end))
}
