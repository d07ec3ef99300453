// internal/api/router.go
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/validation"
	"appraisal-engine/internal/queue"
	"appraisal-engine/internal/service"
)

// RouterDeps wires the router. Queue is optional; nil disables the async
// endpoint. ReadyCheck is probed by /readyz; nil means always ready.
type RouterDeps struct {
	Evaluator  *service.EvaluatorService
	Queue      *queue.Queue
	JWTSecret  string
	ReadyCheck func(ctx context.Context) error
	Logger     logger.Logger
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	validator, err := validation.NewRequestValidator()
	if err != nil {
		return nil, err
	}
	handler := NewAppraisalHandler(deps.Evaluator, deps.Queue, validator, deps.Logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(deps.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if deps.ReadyCheck != nil {
			if err := deps.ReadyCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(BearerAuth(deps.JWTSecret))
	{
		v1.POST("/appraisals", handler.Evaluate)
		v1.POST("/appraisals/async", handler.EvaluateAsync)
		v1.GET("/appraisals/:id", handler.GetByRunID)
	}

	return r, nil
}
