// internal/appraisal/valuation/handler.go
package valuation

import (
	"context"
	"fmt"
	"math"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "valuation"
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"stage": Stage}),
	}
}

// Execute capitalizes NOI into value. The cap-rate model already clamps its
// output to a positive band, but the rate is re-validated here so a
// misconfigured caller cannot divide by zero.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CapRate <= 0 {
		return nil, errors.NewInvalidRangeError(Stage, "capRate", fmt.Sprintf("must be positive, got %v", input.CapRate))
	}

	out := &Output{
		AsIsValue:       round2(input.NOI / input.CapRate),
		StabilizedValue: round2(input.StabilizedNOI / input.CapRate),
	}

	h.logger.Debug("values capitalized", map[string]interface{}{
		"capRate":   input.CapRate,
		"asIsValue": out.AsIsValue,
	})
	return out, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
