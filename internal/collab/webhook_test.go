// internal/collab/webhook_test.go
package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

func samplePayload() *ReportPayload {
	return &ReportPayload{
		RunID:      "run-1",
		Verdict:    "BUY",
		FinalScore: 82.5,
		Result:     json.RawMessage(`{"recommendation":{"verdict":"BUY"}}`),
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWebhookPublisher_Publish(t *testing.T) {
	var received ReportPayload
	var contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub := NewWebhookPublisher(srv.URL, time.Second, logger.NewTestLogger(t))
	err := pub.Publish(context.Background(), samplePayload())
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "run-1", received.RunID)
	assert.Equal(t, "BUY", received.Verdict)
}

func TestWebhookPublisher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pub := NewWebhookPublisher(srv.URL, time.Second, logger.NewTestLogger(t))
	err := pub.Publish(context.Background(), samplePayload())
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeWebhookDeliveryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestWebhookPublisher_Unreachable(t *testing.T) {
	pub := NewWebhookPublisher("http://127.0.0.1:1", 200*time.Millisecond, logger.NewTestLogger(t))
	err := pub.Publish(context.Background(), samplePayload())
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeWebhookDeliveryFailed, stdErr.Code)
}
