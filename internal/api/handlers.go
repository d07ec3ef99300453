// internal/api/handlers.go

// Package api exposes the appraisal pipeline over HTTP: synchronous and
// queued evaluation, run retrieval, and the operational endpoints.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/validation"
	"appraisal-engine/internal/models"
	"appraisal-engine/internal/queue"
	"appraisal-engine/internal/service"
)

// AppraisalHandler serves the evaluation endpoints.
type AppraisalHandler struct {
	evaluator *service.EvaluatorService
	queue     *queue.Queue
	validator *validation.RequestValidator
	errs      *errors.ErrorHandler
	logger    logger.Logger
}

func NewAppraisalHandler(evaluator *service.EvaluatorService, q *queue.Queue, validator *validation.RequestValidator, log logger.Logger) *AppraisalHandler {
	return &AppraisalHandler{
		evaluator: evaluator,
		queue:     q,
		validator: validator,
		errs:      errors.NewErrorHandler(log),
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Evaluate runs one appraisal synchronously and returns the full result.
func (h *AppraisalHandler) Evaluate(c *gin.Context) {
	req, ok := h.decodeRequest(c)
	if !ok {
		return
	}

	eval, err := h.evaluator.Evaluate(c.Request.Context(), req, "api")
	if err != nil {
		h.writeError(c, "", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":     eval.Record.RunID,
		"cached":    eval.Cached,
		"createdAt": eval.Record.CreatedAt,
		"result":    eval.Result,
	})
}

// EvaluateAsync enqueues an appraisal and returns the run id to poll.
func (h *AppraisalHandler) EvaluateAsync(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async evaluation is not enabled"})
		return
	}

	req, ok := h.decodeRequest(c)
	if !ok {
		return
	}

	runID, err := h.queue.Submit(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"runId": runID})
}

// GetByRunID returns a previously completed run.
func (h *AppraisalHandler) GetByRunID(c *gin.Context) {
	runID := c.Param("id")

	eval, err := h.evaluator.GetByRunID(c.Request.Context(), runID)
	if err != nil {
		h.writeError(c, runID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":     eval.Record.RunID,
		"verdict":   eval.Record.Verdict,
		"createdAt": eval.Record.CreatedAt,
		"result":    eval.Result,
	})
}

func (h *AppraisalHandler) decodeRequest(c *gin.Context) (*models.AppraisalRequest, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeError(c, "", errors.NewRequestValidationFailedError("unreadable request body"))
		return nil, false
	}

	// Schema validation runs before decoding so shape errors come back as one
	// structured 400.
	if err := h.validator.Validate(body); err != nil {
		h.writeError(c, "", err)
		return nil, false
	}

	var req models.AppraisalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(c, "", errors.NewRequestValidationFailedError(err.Error()))
		return nil, false
	}
	return &req, true
}

func (h *AppraisalHandler) writeError(c *gin.Context, runID string, err error) {
	stdErr := h.errs.LogError(runID, err)
	c.JSON(errors.HTTPStatus(stdErr.Code), gin.H{"error": stdErr})
}
