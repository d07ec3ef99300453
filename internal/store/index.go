// internal/store/index.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

// EvaluationIndexer pushes a search document per run into elasticsearch so
// analysts can slice verdicts by market, score band or date.
type EvaluationIndexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewEvaluationIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *EvaluationIndexer {
	return &EvaluationIndexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "evaluation-indexer"}),
	}
}

// Index writes one evaluation document keyed by run id.
func (i *EvaluationIndexer) Index(ctx context.Context, rec *EvaluationRecord) error {
	doc := map[string]interface{}{
		"runId":      rec.RunID,
		"verdict":    rec.Verdict,
		"finalScore": rec.FinalScore,
		"createdAt":  rec.CreatedAt,
		"result":     json.RawMessage(rec.Result),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewIndexWriteFailedError(err)
	}

	res, err := i.es.Client.Index(
		i.index,
		bytes.NewReader(body),
		i.es.Client.Index.WithDocumentID(rec.RunID),
		i.es.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewIndexWriteFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexWriteFailedError(fmt.Errorf("index response: %s", res.Status()))
	}
	i.logger.Debug("evaluation indexed", map[string]interface{}{"runId": rec.RunID})
	return nil
}
