// Package errors provides structured error types for syncbench.
// Every error carries a category and code so the benchmark driver can decide
// whether a failure is fatal, aborts one transaction, or fails a single write.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by the part of the workload that failed.
type ErrorCategory string

const (
	ErrCategoryConnection  ErrorCategory = "CONNECTION"
	ErrCategoryWrite       ErrorCategory = "WRITE"
	ErrCategoryTransaction ErrorCategory = "TRANSACTION"
	ErrCategoryValidation  ErrorCategory = "VALIDATION"
	ErrCategoryReport      ErrorCategory = "REPORT"
	ErrCategoryInternal    ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Connection codes
	CodeOpenFailed   = "OPEN_FAILED"
	CodeSchemaFailed = "SCHEMA_FAILED"

	// Write codes
	CodeReplaceFailed = "REPLACE_FAILED"
	CodeInsertFailed  = "INSERT_FAILED"
	CodeUpdateFailed  = "UPDATE_FAILED"
	CodeDeleteFailed  = "DELETE_FAILED"
	CodeQueryFailed   = "QUERY_FAILED"

	// Transaction codes
	CodeTxAborted = "TX_ABORTED"

	// Validation codes
	CodeInvalidCase   = "INVALID_CASE"
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeNegativeCount = "NEGATIVE_COUNT"

	// Report codes
	CodeReportWriteFailed   = "REPORT_WRITE_FAILED"
	CodeReportPublishFailed = "REPORT_PUBLISH_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// BenchError is the structured error type used throughout the harness.
type BenchError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *BenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *BenchError) Is(target error) bool {
	var t *BenchError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new BenchError.
func New(category ErrorCategory, code, message string) *BenchError {
	return &BenchError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new BenchError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *BenchError {
	return &BenchError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *BenchError) WithDetails(details map[string]interface{}) *BenchError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}

// IsFatal reports whether the error must abort the whole benchmark run.
// Connection failures and anything not classified are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCategory(err) {
	case ErrCategoryWrite, ErrCategoryTransaction:
		return false
	default:
		return true
	}
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCategory(err error) ErrorCategory {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a BenchError.
func GetCode(err error) string {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// GetDetail returns a single detail value from the first BenchError in the chain.
func GetDetail(err error, key string) (interface{}, bool) {
	var be *BenchError
	if errors.As(err, &be) && be.Details != nil {
		v, ok := be.Details[key]
		return v, ok
	}
	return nil, false
}

// isRetryable marks failures that a caller may reasonably repeat.
// Store writes are never retried by the harness; only report publishing is.
func isRetryable(category ErrorCategory, code string) bool {
	return category == ErrCategoryReport && code == CodeReportPublishFailed
}

// Convenience constructors for common errors.

func NewConnectionError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryConnection, code, message, cause)
}

func NewWriteError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryWrite, code, message, cause)
}

func NewTransactionError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryTransaction, CodeTxAborted, message, cause)
}

func NewValidationError(code, message string) *BenchError {
	return New(ErrCategoryValidation, code, message)
}

func NewReportError(code, message string, cause error) *BenchError {
	return Wrap(ErrCategoryReport, code, message, cause)
}

func NewInternalError(message string, cause error) *BenchError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
