// internal/collab/webhook.go

// Package collab delivers completed evaluations to downstream collaborators.
// The report webhook receives the full structured result so a narrative
// renderer can build the investor-facing writeup without re-running anything.
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/http"
	"appraisal-engine/internal/common/logger"
)

// ReportPayload is the webhook body: the persisted record identity plus the
// full result bundle.
type ReportPayload struct {
	RunID      string          `json:"runId"`
	Verdict    string          `json:"verdict"`
	FinalScore float64         `json:"finalScore"`
	Result     json.RawMessage `json:"result"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// WebhookPublisher POSTs completed evaluations to the configured report URL.
type WebhookPublisher struct {
	url    string
	client *http.Client
	logger logger.Logger
}

func NewWebhookPublisher(url string, timeout time.Duration, log logger.Logger) *WebhookPublisher {
	return &WebhookPublisher{
		url:    url,
		client: http.NewClient(timeout),
		logger: log.WithFields(map[string]interface{}{"component": "report-webhook"}),
	}
}

// Publish delivers one payload. A non-2xx response is a delivery failure.
func (p *WebhookPublisher) Publish(ctx context.Context, payload *ReportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewWebhookDeliveryFailedError(p.url, err)
	}

	resp, err := p.client.PostJSON(ctx, p.url, body)
	if err != nil {
		return errors.NewWebhookDeliveryFailedError(p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewWebhookDeliveryFailedError(p.url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	p.logger.Debug("report delivered", map[string]interface{}{
		"runId":  payload.RunID,
		"status": resp.StatusCode,
	})
	return nil
}
