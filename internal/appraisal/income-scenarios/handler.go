// internal/appraisal/income-scenarios/handler.go
package incomescenarios

import (
	"context"
	"fmt"
	"math"

	incomeapproach "appraisal-engine/internal/appraisal/income-approach"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "income-scenarios"
)

const defaultDownsidePct = 0.10

type Handler struct {
	income *incomeapproach.Handler
	logger logger.Logger
}

// NewHandler wraps an income-approach handler; every scenario is evaluated
// through the same NOI math.
func NewHandler(income *incomeapproach.Handler, log logger.Logger) *Handler {
	return &Handler{
		income: income,
		logger: log.WithFields(map[string]interface{}{"stage": Stage}),
	}
}

// Execute runs the market, downside and optional Section 8 voucher scenarios.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	downside := defaultDownsidePct
	if input.DownsidePct != nil {
		downside = *input.DownsidePct
	}
	if downside < 0 || downside > 1 {
		return nil, errors.NewInvalidRangeError(Stage, "downsidePct", fmt.Sprintf("must be within [0,1], got %v", downside))
	}

	market, err := h.scenario(ctx, "market", input.MarketRent, input)
	if err != nil {
		return nil, err
	}
	down, err := h.scenario(ctx, "downside", round2(input.MarketRent*(1-downside)), input)
	if err != nil {
		return nil, err
	}

	out := &Output{Market: *market, Downside: *down}
	if market.NOI > 0 {
		out.NOIDropPct = round4((market.NOI - down.NOI) / market.NOI)
	}

	if input.HUDFMRRent != nil {
		voucher, err := h.scenario(ctx, "voucher", *input.HUDFMRRent, input)
		if err != nil {
			return nil, err
		}
		out.Voucher = voucher
	}

	h.logger.Debug("scenarios evaluated", map[string]interface{}{
		"marketNoi":  out.Market.NOI,
		"noiDropPct": out.NOIDropPct,
	})
	return out, nil
}

func (h *Handler) scenario(ctx context.Context, name string, rent float64, input *Input) (*Scenario, error) {
	res, err := h.income.Execute(ctx, &incomeapproach.Input{
		MarketRent:   &rent,
		NumUnits:     input.NumUnits,
		VacancyRate:  input.VacancyRate,
		ExpenseRatio: input.ExpenseRatio,
	})
	if err != nil {
		return nil, err
	}
	return &Scenario{Name: name, RentPerUnit: rent, GPI: res.GPI, NOI: res.NOI}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
