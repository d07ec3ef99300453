// internal/service/evaluator.go

// Package service runs evaluations end to end: fingerprint and cache lookup,
// engine execution, persistence, and fan-out to search, notifications, and
// the report webhook.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"appraisal-engine/internal/collab"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/metrics"
	"appraisal-engine/internal/common/observability"
	"appraisal-engine/internal/engine"
	"appraisal-engine/internal/models"
	"appraisal-engine/internal/store"
)

// EventPublisher publishes completed-evaluation events. Satisfied by
// notify.SNSClient.
type EventPublisher interface {
	Publish(ctx context.Context, topicARN, message string) error
}

// EmailSender sends verdict summary emails. Satisfied by notify.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, from, to, subject, body string) error
}

// NotifyConfig wires the optional outbound channels. Nil clients and empty
// addresses disable the corresponding channel.
type NotifyConfig struct {
	Events    EventPublisher
	TopicARN  string
	Email     EmailSender
	FromEmail string
	ToEmail   string
}

// Evaluation is one completed run: the persisted record plus the structured
// result it was built from. Cached marks runs served from the result cache.
type Evaluation struct {
	Record *store.EvaluationRecord `json:"record"`
	Result *engine.Result          `json:"result"`
	Cached bool                    `json:"cached"`
}

// EvaluatorService is the orchestration layer above the engine. The engine is
// deterministic, so identical requests short-circuit to the cached run.
type EvaluatorService struct {
	engine  *engine.Engine
	store   *store.EvaluationStore
	cache   *store.ResultCache
	indexer *store.EvaluationIndexer
	notify  NotifyConfig
	webhook *collab.WebhookPublisher
	obs     *observability.Observability
	logger  logger.Logger
}

func NewEvaluatorService(eng *engine.Engine, st *store.EvaluationStore, log logger.Logger) *EvaluatorService {
	return &EvaluatorService{
		engine: eng,
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "evaluator-service"}),
	}
}

// WithCache enables the identical-input result cache.
func (s *EvaluatorService) WithCache(cache *store.ResultCache) *EvaluatorService {
	s.cache = cache
	return s
}

// WithIndexer enables elasticsearch indexing of completed runs.
func (s *EvaluatorService) WithIndexer(indexer *store.EvaluationIndexer) *EvaluatorService {
	s.indexer = indexer
	return s
}

// WithNotifications enables SNS events and BUY-verdict emails.
func (s *EvaluatorService) WithNotifications(cfg NotifyConfig) *EvaluatorService {
	s.notify = cfg
	return s
}

// WithWebhook enables report delivery to the narrative collaborator.
func (s *EvaluatorService) WithWebhook(pub *collab.WebhookPublisher) *EvaluatorService {
	s.webhook = pub
	return s
}

// WithObservability enables otel spans and meters alongside the prometheus
// collectors.
func (s *EvaluatorService) WithObservability(obs *observability.Observability) *EvaluatorService {
	s.obs = obs
	return s
}

// Fingerprint derives the cache key for a request from its canonical JSON.
// Struct field order is fixed, so identical inputs always hash identically.
func Fingerprint(req *models.AppraisalRequest) (string, error) {
	canonical, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("fingerprint request: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Evaluate runs one request through the full pipeline. The source label tags
// duration metrics with where the request came from ("api" or "queue").
func (s *EvaluatorService) Evaluate(ctx context.Context, req *models.AppraisalRequest, source string) (*Evaluation, error) {
	return s.evaluate(ctx, req, source, "", true)
}

// EvaluateWithRunID runs under a pre-allocated run id, as queued requests do.
// The cache lookup is skipped so the promised id always materializes.
func (s *EvaluatorService) EvaluateWithRunID(ctx context.Context, req *models.AppraisalRequest, runID, source string) (*Evaluation, error) {
	return s.evaluate(ctx, req, source, runID, false)
}

func (s *EvaluatorService) evaluate(ctx context.Context, req *models.AppraisalRequest, source, runID string, useCache bool) (*Evaluation, error) {
	metrics.EvaluationsActive.Inc()
	defer metrics.EvaluationsActive.Dec()

	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}()

	fingerprint, err := Fingerprint(req)
	if err != nil {
		metrics.EvaluationsFailed.WithLabelValues(string(errors.ErrCodeRequestValidationFailed)).Inc()
		return nil, err
	}

	if useCache {
		if cached := s.lookupCached(ctx, fingerprint); cached != nil {
			return cached, nil
		}
	}

	if s.obs != nil {
		var span trace.Span
		ctx, span = s.obs.StartStage(ctx, "evaluate")
		defer span.End()
	}

	result, err := s.engine.Evaluate(ctx, req)
	if err != nil {
		metrics.EvaluationsFailed.WithLabelValues(string(errors.GetErrorCode(err))).Inc()
		return nil, err
	}

	rec, err := s.persist(ctx, fingerprint, runID, result)
	if err != nil {
		metrics.EvaluationsFailed.WithLabelValues(string(errors.GetErrorCode(err))).Inc()
		return nil, err
	}

	s.fanOut(ctx, rec, result)
	metrics.EvaluationsCompleted.WithLabelValues(rec.Verdict).Inc()
	if s.obs != nil {
		s.obs.RecordEvaluation(ctx, rec.Verdict)
		s.obs.RecordEvaluationDuration(ctx, time.Since(start), rec.Verdict)
	}

	return &Evaluation{Record: rec, Result: result, Cached: false}, nil
}

// GetByRunID fetches a persisted run and rehydrates its result bundle.
func (s *EvaluatorService) GetByRunID(ctx context.Context, runID string) (*Evaluation, error) {
	rec, err := s.store.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	var result engine.Result
	if err := json.Unmarshal(rec.Result, &result); err != nil {
		return nil, errors.NewQueryExecutionFailedError("decode stored result", err)
	}
	return &Evaluation{Record: rec, Result: &result, Cached: false}, nil
}

// lookupCached returns the prior run for this fingerprint, or nil. A cache
// hit pointing at a missing record degrades to a miss.
func (s *EvaluatorService) lookupCached(ctx context.Context, fingerprint string) *Evaluation {
	if s.cache == nil {
		return nil
	}
	runID := s.cache.Lookup(ctx, fingerprint)
	if runID == "" {
		return nil
	}

	eval, err := s.GetByRunID(ctx, runID)
	if err != nil {
		s.logger.Warn("cached run id not resolvable, re-evaluating", map[string]interface{}{
			"runId": runID,
			"error": err.Error(),
		})
		return nil
	}

	s.logger.Debug("served from result cache", map[string]interface{}{"runId": runID})
	eval.Cached = true
	return eval
}

func (s *EvaluatorService) persist(ctx context.Context, fingerprint, runID string, result *engine.Result) (*store.EvaluationRecord, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	if runID == "" {
		runID = uuid.NewString()
	}
	rec := &store.EvaluationRecord{
		RunID:       runID,
		Fingerprint: fingerprint,
		Verdict:     string(result.Recommendation.Verdict),
		FinalScore:  result.Recommendation.FinalScore,
		Result:      resultJSON,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, fingerprint, rec.RunID); err != nil {
			s.logger.Warn("result cache store failed", map[string]interface{}{
				"runId": rec.RunID,
				"error": err.Error(),
			})
		}
	}
	return rec, nil
}

// fanOut performs the best-effort post-persist deliveries. None of them can
// fail the evaluation: the run is already durable.
func (s *EvaluatorService) fanOut(ctx context.Context, rec *store.EvaluationRecord, result *engine.Result) {
	if s.indexer != nil {
		if err := s.indexer.Index(ctx, rec); err != nil {
			s.logger.Warn("search index write failed", map[string]interface{}{
				"runId": rec.RunID,
				"error": err.Error(),
			})
		}
	}

	if s.notify.Events != nil && s.notify.TopicARN != "" {
		event, _ := json.Marshal(map[string]interface{}{
			"runId":      rec.RunID,
			"verdict":    rec.Verdict,
			"finalScore": rec.FinalScore,
		})
		if err := s.notify.Events.Publish(ctx, s.notify.TopicARN, string(event)); err != nil {
			s.logger.Warn("evaluation event publish failed", map[string]interface{}{
				"runId": rec.RunID,
				"error": err.Error(),
			})
		}
	}

	if s.notify.Email != nil && s.notify.ToEmail != "" && rec.Verdict == buyVerdict {
		subject := fmt.Sprintf("BUY candidate: run %s scored %.1f", rec.RunID, rec.FinalScore)
		body := buyEmailBody(rec, result)
		if err := s.notify.Email.SendEmail(ctx, s.notify.FromEmail, s.notify.ToEmail, subject, body); err != nil {
			s.logger.Warn("verdict email send failed", map[string]interface{}{
				"runId": rec.RunID,
				"error": err.Error(),
			})
		}
	}

	if s.webhook != nil {
		payload := &collab.ReportPayload{
			RunID:      rec.RunID,
			Verdict:    rec.Verdict,
			FinalScore: rec.FinalScore,
			Result:     rec.Result,
			CreatedAt:  rec.CreatedAt,
		}
		if err := s.webhook.Publish(ctx, payload); err != nil {
			s.logger.Warn("report webhook delivery failed", map[string]interface{}{
				"runId": rec.RunID,
				"error": err.Error(),
			})
		}
	}
}

const buyVerdict = "BUY"

func buyEmailBody(rec *store.EvaluationRecord, result *engine.Result) string {
	body := fmt.Sprintf("Run %s completed with verdict %s (score %.1f).\n\n", rec.RunID, rec.Verdict, rec.FinalScore)
	if result.Valuation != nil {
		body += fmt.Sprintf("Reconciled as-is value: $%.2f\n", result.Valuation.AsIsValue)
	}
	if result.Loan != nil {
		body += fmt.Sprintf("Supportable loan: $%.2f (achieved DSCR %.2f)\n", result.Loan.BindingLoan, result.Loan.AchievedDSCR)
	}
	for _, reason := range result.Recommendation.Reasoning {
		body += "- " + reason + "\n"
	}
	return body
}
