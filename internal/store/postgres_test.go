// internal/store/postgres_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

func newMockStore(t *testing.T) (*EvaluationStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewEvaluationStore(&database.PostgresClient{DB: db}, logger.NewTestLogger(t)), mock
}

func sampleRecord() *EvaluationRecord {
	return &EvaluationRecord{
		RunID:       "1f1a2b3c-0000-0000-0000-000000000001",
		Fingerprint: "abc123",
		Verdict:     "BUY",
		FinalScore:  88.5,
		Result:      json.RawMessage(`{"recommendation":{"verdict":"BUY"}}`),
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEvaluationStore_Insert(t *testing.T) {
	s, mock := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectExec("INSERT INTO evaluations").
		WithArgs(rec.RunID, rec.Fingerprint, rec.Verdict, rec.FinalScore, []byte(rec.Result), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationStore_Insert_Failure(t *testing.T) {
	s, mock := newMockStore(t)
	rec := sampleRecord()

	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnError(assert.AnError)

	err := s.Insert(context.Background(), rec)
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseInsertFailed, stdErr.Code)
}

func TestEvaluationStore_GetByRunID(t *testing.T) {
	s, mock := newMockStore(t)
	rec := sampleRecord()

	rows := sqlmock.NewRows([]string{"run_id", "fingerprint", "verdict", "final_score", "result", "created_at"}).
		AddRow(rec.RunID, rec.Fingerprint, rec.Verdict, rec.FinalScore, []byte(rec.Result), rec.CreatedAt)
	mock.ExpectQuery("SELECT run_id, fingerprint, verdict, final_score, result, created_at").
		WithArgs(rec.RunID).
		WillReturnRows(rows)

	got, err := s.GetByRunID(context.Background(), rec.RunID)
	require.NoError(t, err)
	assert.Equal(t, rec.Verdict, got.Verdict)
	assert.JSONEq(t, string(rec.Result), string(got.Result))
}

func TestEvaluationStore_GetByRunID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT run_id, fingerprint, verdict, final_score, result, created_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "fingerprint", "verdict", "final_score", "result", "created_at"}))

	_, err := s.GetByRunID(context.Background(), "missing")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeEvaluationNotFound, stdErr.Code)
}

func TestEvaluationStore_Recent(t *testing.T) {
	s, mock := newMockStore(t)
	rec := sampleRecord()

	rows := sqlmock.NewRows([]string{"run_id", "fingerprint", "verdict", "final_score", "result", "created_at"}).
		AddRow(rec.RunID, rec.Fingerprint, rec.Verdict, rec.FinalScore, []byte(rec.Result), rec.CreatedAt)
	mock.ExpectQuery("SELECT run_id, fingerprint, verdict, final_score, result, created_at").
		WithArgs(10).
		WillReturnRows(rows)

	records, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.RunID, records[0].RunID)
}
