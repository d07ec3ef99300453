// internal/queue/queue.go

// Package queue provides the redis-list backed asynchronous evaluation path:
// the API enqueues requests with a pre-allocated run id and a worker pool
// drains them through the evaluator service.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/metrics"
	"appraisal-engine/internal/models"
)

// Task is one queued evaluation. The run id is allocated at submit time so
// the caller can poll for the result before the worker picks it up.
type Task struct {
	RunID       string                   `json:"runId"`
	Request     *models.AppraisalRequest `json:"request"`
	Attempts    int                      `json:"attempts"`
	SubmittedAt time.Time                `json:"submittedAt"`
}

// Queue is the redis list the async path runs on.
type Queue struct {
	redis  *database.RedisClient
	key    string
	logger logger.Logger
}

func NewQueue(rdb *database.RedisClient, key string, log logger.Logger) *Queue {
	return &Queue{
		redis:  rdb,
		key:    key,
		logger: log.WithFields(map[string]interface{}{"component": "evaluation-queue"}),
	}
}

// Submit enqueues a request and returns the run id the result will be stored
// under.
func (q *Queue) Submit(ctx context.Context, req *models.AppraisalRequest) (string, error) {
	task := &Task{
		RunID:       uuid.NewString(),
		Request:     req,
		SubmittedAt: time.Now().UTC(),
	}
	if err := q.push(ctx, task); err != nil {
		return "", err
	}

	q.logger.Info("evaluation queued", map[string]interface{}{"runId": task.RunID})
	return task.RunID, nil
}

func (q *Queue) push(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return errors.NewQueueSubmitFailedError(err)
	}
	if err := q.redis.GetClient().LPush(ctx, q.key, payload).Err(); err != nil {
		return errors.NewQueueSubmitFailedError(err)
	}
	q.updateDepth(ctx)
	return nil
}

// Pop blocks up to timeout for the next task. A nil task with a nil error
// means the wait timed out.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*Task, error) {
	vals, err := q.redis.GetClient().BRPop(ctx, timeout, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewQueuePollFailedError(err)
	}

	// BRPop returns [key, value].
	var task Task
	if err := json.Unmarshal([]byte(vals[1]), &task); err != nil {
		return nil, errors.NewQueuePollFailedError(err)
	}
	q.updateDepth(ctx)
	return &task, nil
}

func (q *Queue) updateDepth(ctx context.Context) {
	depth, err := q.redis.GetClient().LLen(ctx, q.key).Result()
	if err != nil {
		return
	}
	metrics.QueueDepth.Set(float64(depth))
}
