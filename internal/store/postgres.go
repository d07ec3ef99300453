// internal/store/postgres.go

// Package store persists completed evaluation runs and serves them back to
// the API: postgres for the durable record, redis for the identical-input
// result cache, elasticsearch for search.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

// EvaluationRecord is one persisted run. Result holds the full structured
// bundle as JSON.
type EvaluationRecord struct {
	RunID       string          `json:"runId"`
	Fingerprint string          `json:"fingerprint"`
	Verdict     string          `json:"verdict"`
	FinalScore  float64         `json:"finalScore"`
	Result      json.RawMessage `json:"result"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// EvaluationStore is the postgres-backed run archive.
type EvaluationStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewEvaluationStore(db *database.PostgresClient, log logger.Logger) *EvaluationStore {
	return &EvaluationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "evaluation-store"}),
	}
}

const insertEvaluationQuery = `
	INSERT INTO evaluations (run_id, fingerprint, verdict, final_score, result, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Insert stores a completed run.
func (s *EvaluationStore) Insert(ctx context.Context, rec *EvaluationRecord) error {
	_, err := s.db.Exec(ctx, insertEvaluationQuery,
		rec.RunID, rec.Fingerprint, rec.Verdict, rec.FinalScore, []byte(rec.Result), rec.CreatedAt)
	if err != nil {
		s.logger.Error("evaluation insert failed", map[string]interface{}{
			"runId": rec.RunID,
			"error": err.Error(),
		})
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

const selectEvaluationQuery = `
	SELECT run_id, fingerprint, verdict, final_score, result, created_at
	FROM evaluations
	WHERE run_id = $1`

// GetByRunID fetches one persisted run.
func (s *EvaluationStore) GetByRunID(ctx context.Context, runID string) (*EvaluationRecord, error) {
	row := s.db.QueryRow(ctx, selectEvaluationQuery, runID)

	var rec EvaluationRecord
	var result []byte
	err := row.Scan(&rec.RunID, &rec.Fingerprint, &rec.Verdict, &rec.FinalScore, &result, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewEvaluationNotFoundError(runID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select evaluation", err)
	}
	rec.Result = result
	return &rec, nil
}

const recentEvaluationsQuery = `
	SELECT run_id, fingerprint, verdict, final_score, result, created_at
	FROM evaluations
	ORDER BY created_at DESC
	LIMIT $1`

// Recent lists the newest runs, newest first.
func (s *EvaluationStore) Recent(ctx context.Context, limit int) ([]*EvaluationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, recentEvaluationsQuery, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select recent evaluations", err)
	}
	defer rows.Close()

	records := []*EvaluationRecord{}
	for rows.Next() {
		var rec EvaluationRecord
		var result []byte
		if err := rows.Scan(&rec.RunID, &rec.Fingerprint, &rec.Verdict, &rec.FinalScore, &result, &rec.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan evaluation row", err)
		}
		rec.Result = result
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate evaluations", err)
	}
	return records, nil
}
