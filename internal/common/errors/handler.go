// internal/common/errors/handler.go
package errors

import (
	"net/http"
	"time"
)

// ErrorHandler normalizes arbitrary errors into StandardError and maps them to
// transport-level responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Normalize ensures we always have a StandardError.
func (h *ErrorHandler) Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// LogError emits the standard structured error record and returns the
// normalized error.
func (h *ErrorHandler) LogError(runID string, err error) *StandardError {
	stdErr := h.Normalize(err)
	h.logger.Error("evaluation failed", map[string]interface{}{
		"runId":         runID,
		"errorCode":     string(stdErr.Code),
		"component":     stdErr.Component,
		"field":         stdErr.Field,
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"retries":       GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
	return stdErr
}

// HTTPStatus maps an error code to the API status. Input problems are the
// caller's fault; everything else is ours.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMissingInput, ErrCodeInvalidRange, ErrCodeRequestValidationFailed:
		return http.StatusBadRequest
	case ErrCodeEvaluationNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
