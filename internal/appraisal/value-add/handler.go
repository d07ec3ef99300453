// internal/appraisal/value-add/handler.go
package valueadd

import (
	"context"
	"fmt"
	"math"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "value-add"
)

const defaultHoldYears = 5

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"stage": Stage}),
	}
}

// Execute computes yield on cost, exit value and equity creation for a rehab
// play, plus a rough hold-period IRR.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.PurchasePrice <= 0 {
		return nil, errors.NewInvalidRangeError(Stage, "purchasePrice", fmt.Sprintf("must be positive, got %v", input.PurchasePrice))
	}
	if input.RehabBudget < 0 {
		return nil, errors.NewInvalidRangeError(Stage, "rehabBudget", "must be non-negative")
	}
	if input.ExitCapRate <= 0 {
		return nil, errors.NewInvalidRangeError(Stage, "exitCapRate", fmt.Sprintf("must be positive, got %v", input.ExitCapRate))
	}

	hold := input.HoldYears
	if hold <= 0 {
		hold = defaultHoldYears
	}

	totalCost := input.PurchasePrice + input.RehabBudget
	exitValue := input.NOIStabilized / input.ExitCapRate

	out := &Output{
		TotalCost:      round2(totalCost),
		GoingInCapRate: round4(input.NOIInitial / input.PurchasePrice),
		YieldOnCost:    round4(input.NOIStabilized / totalCost),
		ExitValue:      round2(exitValue),
		EquityCreation: round2(exitValue - totalCost),
		HoldYears:      hold,
	}
	if irr, ok := simpleIRR(totalCost, input.NOIInitial, input.NOIStabilized, exitValue, hold); ok {
		r := round4(irr)
		out.SimpleIRR = &r
	}

	h.logger.Debug("value-add metrics computed", map[string]interface{}{
		"yieldOnCost":    out.YieldOnCost,
		"equityCreation": out.EquityCreation,
	})
	return out, nil
}

// simpleIRR bisects NPV over [-50%, +50%]. Cash flows: year 1 pays the
// initial NOI, later years the stabilized NOI, and the final year adds the
// exit proceeds. Financing is ignored.
func simpleIRR(totalCost, noiInitial, noiStabilized, exitValue float64, holdYears int) (float64, bool) {
	if totalCost <= 0 {
		return 0, false
	}

	npv := func(rate float64) float64 {
		v := -totalCost
		for year := 1; year <= holdYears; year++ {
			cf := noiStabilized
			if year == 1 {
				cf = noiInitial
			}
			if year == holdYears {
				cf += exitValue
			}
			v += cf / math.Pow(1+rate, float64(year))
		}
		return v
	}

	low, high := -0.5, 0.5
	if npv(low) < 0 || npv(high) > 0 {
		return 0, false
	}
	for i := 0; i < 60; i++ {
		mid := (low + high) / 2
		if npv(mid) > 0 {
			low = mid
		} else {
			high = mid
		}
	}
	return (low + high) / 2, true
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
