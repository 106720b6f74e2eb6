package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adriangreen/tm-dash/internal/remote"
	"github.com/adriangreen/tm-dash/internal/tasks"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// ErrorCategoryNetwork represents requests that never got a response
	ErrorCategoryNetwork ErrorCategory = "network"
	// ErrorCategoryRemote represents non-success responses from the backend
	ErrorCategoryRemote ErrorCategory = "remote"
	// ErrorCategoryParsing represents responses that could not be decoded
	ErrorCategoryParsing ErrorCategory = "parsing"
	// ErrorCategoryValidation represents user input validation errors
	ErrorCategoryValidation ErrorCategory = "validation"
	// ErrorCategoryOperation represents anything else
	ErrorCategoryOperation ErrorCategory = "operation"
)

// defaultHints are the recovery steps attached to each category
var defaultHints = map[ErrorCategory][]string{
	ErrorCategoryNetwork: {
		"Check that the backend is running",
		"Verify the base URL in your config or TM_DASH_BASE_URL",
		"Press r to retry",
	},
	ErrorCategoryRemote: {
		"Press r to reload the task list",
		"Retry the action",
	},
	ErrorCategoryParsing: {
		"Check that the base URL points at the task API",
		"Check the log file for the raw error",
	},
	ErrorCategoryValidation: {
		"Review your input and try again",
	},
}

// AppError is what the UI shows for a failed action
type AppError struct {
	Category      ErrorCategory
	Title         string
	Message       string
	Details       string
	RecoveryHints []string
	Underlying    error
}

// NewAppError creates an error with the category's default hints
func NewAppError(category ErrorCategory, title, message string, underlying error) *AppError {
	return &AppError{
		Category:      category,
		Title:         title,
		Message:       message,
		Underlying:    underlying,
		RecoveryHints: append([]string(nil), defaultHints[category]...),
	}
}

// NewNetworkError creates an error for an unreachable backend
func NewNetworkError(title, message string, underlying error) *AppError {
	return NewAppError(ErrorCategoryNetwork, title, message, underlying)
}

// NewOperationError creates an error with no specific recovery
func NewOperationError(title, message string, underlying error) *AppError {
	return NewAppError(ErrorCategoryOperation, title, message, underlying)
}

// FromError classifies err into an AppError titled for the failed action
func FromError(title string, err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch remote.Kind(err) {
	case remote.KindNetwork:
		return NewNetworkError(title, "The task server could not be reached.", err)
	case remote.KindRejected:
		msg := fmt.Sprintf("The server rejected the request (status %d).", remote.StatusCode(err))
		return NewAppError(ErrorCategoryRemote, title, msg, err)
	case remote.KindMalformed:
		return NewAppError(ErrorCategoryParsing, title, "The server sent a response that could not be read.", err)
	}

	switch {
	case errors.Is(err, tasks.ErrEmptyTitle):
		return NewAppError(ErrorCategoryValidation, title, "A task needs a title.", err)
	case errors.Is(err, tasks.ErrTaskNotFound):
		return NewAppError(ErrorCategoryValidation, title, "That task no longer exists. Press r to refresh.", err)
	}
	return NewOperationError(title, err.Error(), err)
}

// WithDetails adds text shown under the message
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithRecoveryHints replaces the default hints
func (e *AppError) WithRecoveryHints(hints ...string) *AppError {
	e.RecoveryHints = hints
	return e
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Title, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

// Unwrap exposes the underlying error
func (e *AppError) Unwrap() error {
	return e.Underlying
}

// GetDisplayMessage returns the message plus details, if any
func (e *AppError) GetDisplayMessage() string {
	if e.Details != "" {
		return fmt.Sprintf("%s\n\n%s", e.Message, e.Details)
	}
	return e.Message
}

// GetRecoveryMessage numbers the hints for display
func (e *AppError) GetRecoveryMessage() string {
	if len(e.RecoveryHints) == 0 {
		return "Please try again."
	}
	var b strings.Builder
	b.WriteString("To recover:\n")
	for i, hint := range e.RecoveryHints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, hint)
	}
	return b.String()
}
