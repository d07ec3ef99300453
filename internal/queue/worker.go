// internal/queue/worker.go
package queue

import (
	"context"
	"sync"
	"time"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/models"
	"appraisal-engine/internal/service"
)

// Evaluator is the slice of the evaluator service the workers need.
type Evaluator interface {
	EvaluateWithRunID(ctx context.Context, req *models.AppraisalRequest, runID, source string) (*service.Evaluation, error)
}

// WorkerPool drains the evaluation queue. Each worker blocks on the list,
// runs the evaluator service, and requeues retryable failures with a bounded
// backoff.
type WorkerPool struct {
	queue       *Queue
	evaluator   Evaluator
	workers     int
	pollTimeout time.Duration
	maxRetries  int
	logger      logger.Logger

	wg sync.WaitGroup
}

func NewWorkerPool(q *Queue, evaluator Evaluator, workers int, pollTimeout time.Duration, maxRetries int, log logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		queue:       q,
		evaluator:   evaluator,
		workers:     workers,
		pollTimeout: pollTimeout,
		maxRetries:  maxRetries,
		logger:      log.WithFields(map[string]interface{}{"component": "queue-worker"}),
	}
}

// Start launches the workers. They run until ctx is cancelled.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	p.logger.Info("queue workers started", map[string]interface{}{"workers": p.workers})
}

// Wait blocks until every worker has exited.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.WithFields(map[string]interface{}{"worker": id})

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping", nil)
			return
		default:
		}

		task, err := p.queue.Pop(ctx, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping", nil)
				return
			}
			log.Error("queue poll failed", map[string]interface{}{"error": err.Error()})
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		p.process(ctx, log, task)
	}
}

func (p *WorkerPool) process(ctx context.Context, log logger.Logger, task *Task) {
	log.Info("processing queued evaluation", map[string]interface{}{
		"runId":    task.RunID,
		"attempts": task.Attempts,
	})

	_, err := p.evaluator.EvaluateWithRunID(ctx, task.Request, task.RunID, "queue")
	if err == nil {
		return
	}

	code := errors.GetErrorCode(err)
	retryBudget := errors.GetRetryCount(code)
	if retryBudget > p.maxRetries {
		retryBudget = p.maxRetries
	}

	if task.Attempts >= retryBudget {
		log.Error("queued evaluation abandoned", map[string]interface{}{
			"runId":    task.RunID,
			"attempts": task.Attempts,
			"code":     string(code),
			"error":    err.Error(),
		})
		return
	}

	task.Attempts++
	log.Warn("queued evaluation failed, requeueing", map[string]interface{}{
		"runId":    task.RunID,
		"attempts": task.Attempts,
		"code":     string(code),
	})
	if requeueErr := p.queue.push(ctx, task); requeueErr != nil {
		log.Error("requeue failed", map[string]interface{}{
			"runId": task.RunID,
			"error": requeueErr.Error(),
		})
	}
}
