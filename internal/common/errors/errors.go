// internal/common/errors/errors.go
// Package errors provides standardized error handling for the appraisal pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Evaluation errors (fatal to a single run)
const (
	ErrCodeMissingInput ErrorCode = "MISSING_INPUT"
	ErrCodeInvalidRange ErrorCode = "INVALID_RANGE"

	// ErrCodeConfigurationInvalid is fatal at construction time, not per-run.
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	// ErrCodeInsufficientData is non-fatal; it is carried as a Warning on the
	// result, never as a run-aborting error.
	ErrCodeInsufficientData ErrorCode = "INSUFFICIENT_DATA"
)

// Service errors (persistence, caching, fan-out)
const (
	ErrCodeEvaluationNotFound ErrorCode = "EVALUATION_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeCacheReadFailed  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed ErrorCode = "CACHE_WRITE_FAILED"

	ErrCodeIndexWriteFailed ErrorCode = "INDEX_WRITE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeWebhookDeliveryFailed  ErrorCode = "WEBHOOK_DELIVERY_FAILED"

	ErrCodeQueueSubmitFailed ErrorCode = "QUEUE_SUBMIT_FAILED"
	ErrCodeQueuePollFailed   ErrorCode = "QUEUE_POLL_FAILED"

	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"

	// ErrCodeInternal labels plain errors that carry no structured code.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Component string                 `json:"component,omitempty"`
	Field     string                 `json:"field,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("StandardError[%s] %s: %s", e.Code, e.Component, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Warning is a non-fatal finding collected during an evaluation run. Warnings
// ride alongside the successful result so the presentation layers can show
// where confidence is reduced.
type Warning struct {
	Component string    `json:"component"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingInputError reports a required field that is absent for a component.
// Fatal to the evaluation run.
func NewMissingInputError(component, field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingInput,
		Message:   fmt.Sprintf("required input %q is missing", field),
		Component: component,
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRangeError reports a supplied value outside its declared domain.
// Fatal to the evaluation run.
func NewInvalidRangeError(component, field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRange,
		Message:   fmt.Sprintf("value for %q violates its declared domain", field),
		Details:   details,
		Component: component,
		Field:     field,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError reports an invalid or incomplete ratebook/configuration.
// Fatal at construction time.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "invalid engine configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientDataWarning creates the non-fatal warning carried on the result.
func NewInsufficientDataWarning(component, message string) Warning {
	return Warning{
		Component: component,
		Code:      ErrCodeInsufficientData,
		Message:   message,
	}
}

// NewEvaluationNotFoundError reports a lookup for a run id that was never persisted.
func NewEvaluationNotFoundError(runID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluationNotFound,
		Message:   "evaluation not found",
		Details:   fmt.Sprintf("runId: %s", runID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable persistence error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "failed to persist evaluation",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheReadFailedError creates a retryable cache error.
func NewCacheReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheReadFailed,
		Message:   "result cache read error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheWriteFailedError creates a retryable cache error.
func NewCacheWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheWriteFailed,
		Message:   "result cache write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexWriteFailedError creates a retryable search-index error.
func NewIndexWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexWriteFailed,
		Message:   "evaluation index write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "notification delivery error",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookDeliveryFailedError creates a retryable webhook error.
func NewWebhookDeliveryFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookDeliveryFailed,
		Message:   "webhook delivery error",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueueSubmitFailedError creates a retryable queue error.
func NewQueueSubmitFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueueSubmitFailed,
		Message:   "evaluation queue submit error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueuePollFailedError creates a retryable queue error.
func NewQueuePollFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueuePollFailed,
		Message:   "evaluation queue poll error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestValidationFailedError reports a request body that failed schema validation.
func NewRequestValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "appraisal request failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsFatalEvaluationError reports whether an error must abort the whole run.
// Missing/invalid inputs and bad configuration abort; everything non-fatal is
// expressed as a Warning, never as an error.
func IsFatalEvaluationError(err error) bool {
	stdErr, ok := err.(*StandardError)
	if !ok {
		return true
	}
	switch stdErr.Code {
	case ErrCodeMissingInput, ErrCodeInvalidRange, ErrCodeConfigurationInvalid:
		return true
	}
	return false
}

// GetErrorCode extracts the structured code from an error, or ErrCodeInternal
// for plain errors.
func GetErrorCode(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	s := string(code)
	switch {
	case code == ErrCodeMissingInput || code == ErrCodeInvalidRange:
		return "input"
	case code == ErrCodeConfigurationInvalid:
		return "configuration"
	case code == ErrCodeInsufficientData:
		return "data_quality"
	case strings.Contains(s, "DATABASE") || strings.Contains(s, "QUERY"):
		return "database"
	case strings.Contains(s, "CACHE"):
		return "cache"
	case strings.Contains(s, "INDEX"):
		return "index"
	case strings.Contains(s, "NOTIFICATION") || strings.Contains(s, "WEBHOOK"):
		return "notification"
	case strings.Contains(s, "QUEUE"):
		return "queue"
	default:
		return "other"
	}
}

// GetRetryCount returns how many times the queue worker should retry a failed
// run for a given error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed:
		return 3
	case ErrCodeDatabaseInsertFailed, ErrCodeIndexWriteFailed:
		return 2
	case ErrCodeCacheReadFailed, ErrCodeCacheWriteFailed:
		return 1
	case ErrCodeNotificationSendFailed, ErrCodeWebhookDeliveryFailed, ErrCodeQueuePollFailed, ErrCodeQueueSubmitFailed:
		return 2
	default:
		return 0
	}
}
