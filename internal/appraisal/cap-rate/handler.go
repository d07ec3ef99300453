// internal/appraisal/cap-rate/handler.go
package caprate

import (
	"context"
	"fmt"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "cap-rate"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": Stage}),
	}
}

// Execute reconciles a capitalization rate: grid base rate, plus a risk-score
// step adjustment, plus a rent-control increment keyed off the base rate. The
// sum is clamped to the configured plausible band. Property type and submarket
// class have no silent default.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.PropertyType == "" {
		return nil, errors.NewMissingInputError(Stage, "propertyType")
	}
	if input.SubmarketClass == "" {
		return nil, errors.NewMissingInputError(Stage, "submarketClass")
	}

	row, ok := h.config.Grid[input.PropertyType]
	if !ok {
		return nil, errors.NewInvalidRangeError(Stage, "propertyType", fmt.Sprintf("unknown property type %q", input.PropertyType))
	}
	base, ok := row[input.SubmarketClass]
	if !ok {
		return nil, errors.NewInvalidRangeError(Stage, "submarketClass", fmt.Sprintf("unknown submarket class %q", input.SubmarketClass))
	}

	riskAdj := 0.0
	if input.RiskScore != nil {
		score := *input.RiskScore
		if score < 0 || score > 100 {
			return nil, errors.NewInvalidRangeError(Stage, "riskScore", fmt.Sprintf("must be within [0,100], got %v", score))
		}
		riskAdj = h.riskAdjustment(score)
	}

	rcAdj := 0.0
	if input.RentControlled {
		rcAdj = h.rentControlAdjustment(base)
	}

	rate := base + riskAdj + rcAdj
	clamped := false
	if rate < h.config.Band.Min {
		rate = h.config.Band.Min
		clamped = true
	} else if rate > h.config.Band.Max {
		rate = h.config.Band.Max
		clamped = true
	}

	out := &Output{
		BaseRate:              base,
		RiskAdjustment:        riskAdj,
		RentControlAdjustment: rcAdj,
		CapRate:               rate,
		Clamped:               clamped,
	}

	h.logger.Debug("cap rate reconciled", map[string]interface{}{
		"baseRate": base,
		"capRate":  rate,
		"clamped":  clamped,
	})
	return out, nil
}

// riskAdjustment walks the ordered step function; the ratebook guarantees a
// catch-all last step.
func (h *Handler) riskAdjustment(score float64) float64 {
	for _, step := range h.config.RiskSteps {
		if score < step.Below {
			return step.Adjustment
		}
	}
	if n := len(h.config.RiskSteps); n > 0 {
		return h.config.RiskSteps[n-1].Adjustment
	}
	return 0
}

// rentControlAdjustment scales the increment with the base rate band so
// low-cap markets carry a proportionally smaller premium.
func (h *Handler) rentControlAdjustment(base float64) float64 {
	for _, step := range h.config.RentControlSteps {
		if base <= step.MaxBaseRate {
			return step.Adjustment
		}
	}
	if n := len(h.config.RentControlSteps); n > 0 {
		return h.config.RentControlSteps[n-1].Adjustment
	}
	return 0
}
