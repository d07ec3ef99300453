// internal/appraisal/recommendation/handler.go
package recommendation

import (
	"context"
	"fmt"
	"math"

	marketconfidence "appraisal-engine/internal/appraisal/market-confidence"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "recommendation"
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

// Execute fuses the upstream results into a verdict. Component scores live on
// [0,100] with 50 as the neutral midpoint; the weighted base score is then
// bent by a bounded confidence multiplier. A DSCR miss beyond the hard-fail
// margin caps the verdict at WATCH no matter how high the score lands. The
// reasoning list is built in a fixed component order so identical inputs
// always produce identical output.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{}
	reasoning := make([]string, 0, 5)

	// Cap rate: a higher implied rate than the benchmark means the asset is
	// priced cheaply for its income.
	if input.ImpliedCapRate != nil && input.BenchmarkRate > 0 {
		delta := *input.ImpliedCapRate - input.BenchmarkRate
		out.CapRateScore = clamp(50+delta/h.config.CapRateSpan*50, 0, 100)
		reasoning = append(reasoning, fmt.Sprintf(
			"implied cap rate %.2f%% vs market rate %.2f%% scores %.0f/100",
			*input.ImpliedCapRate*100, input.BenchmarkRate*100, out.CapRateScore))
	} else {
		out.CapRateScore = h.config.NeutralScore
		reasoning = append(reasoning, "no asking price available, cap-rate component held neutral")
	}

	// DSCR: margin above or below target, not just pass/fail.
	dscrDelta := input.AchievedDSCR - input.TargetDSCR
	out.DSCRScore = clamp(50+dscrDelta/h.config.DSCRSpan*50, 0, 100)
	out.HardFail = input.AchievedDSCR < input.TargetDSCR*(1-h.config.HardFailMargin)
	switch {
	case out.HardFail:
		reasoning = append(reasoning, fmt.Sprintf(
			"achieved DSCR %.2fx misses the %.2fx target by a wide margin, verdict capped at WATCH",
			input.AchievedDSCR, input.TargetDSCR))
	case input.MeetsThreshold:
		reasoning = append(reasoning, fmt.Sprintf(
			"achieved DSCR %.2fx clears the %.2fx target", input.AchievedDSCR, input.TargetDSCR))
	default:
		reasoning = append(reasoning, fmt.Sprintf(
			"achieved DSCR %.2fx falls short of the %.2fx target", input.AchievedDSCR, input.TargetDSCR))
	}

	// Sales comparison: how closely the income valuation and the comp-derived
	// value concur. Insufficient comps fall back to the neutral midpoint.
	if input.CompValue != nil && *input.CompValue > 0 && input.IncomeValue > 0 {
		divergence := math.Abs(input.IncomeValue-*input.CompValue) / *input.CompValue
		out.SalesCompScore = clamp(100*(1-divergence/h.config.AgreementSpan), 0, 100)
		reasoning = append(reasoning, fmt.Sprintf(
			"income value diverges %.1f%% from the comp median, agreement scores %.0f/100",
			divergence*100, out.SalesCompScore))
	} else {
		out.SalesCompScore = h.config.NeutralScore
		reasoning = append(reasoning, "insufficient sales comps, agreement component held neutral")
	}

	// Weighted base score; the cash-on-cash weight is redistributed when the
	// caller did not supply a return.
	w := h.config.Weights
	weightSum := w.CapRate + w.DSCR + w.SalesComp
	base := out.CapRateScore*w.CapRate + out.DSCRScore*w.DSCR + out.SalesCompScore*w.SalesComp
	if input.CashOnCashReturn != nil {
		cocScore := clamp(*input.CashOnCashReturn/h.config.CashOnCashSpan*100, 0, 100)
		out.CashOnCashScore = &cocScore
		base += cocScore * w.CashOnCash
		weightSum += w.CashOnCash
	}
	out.BaseScore = round2(clamp(base/weightSum, 0, 100))

	out.ConfidenceMultiplier = h.multiplier(input.ConfidenceLevel)
	out.FinalScore = round2(clamp(out.BaseScore*out.ConfidenceMultiplier, 0, 100))
	reasoning = append(reasoning, fmt.Sprintf(
		"market confidence %s applies a %.2fx multiplier", input.ConfidenceLevel, out.ConfidenceMultiplier))
	if out.CashOnCashScore != nil {
		reasoning = append(reasoning, fmt.Sprintf(
			"cash-on-cash return %.1f%% scores %.0f/100", *input.CashOnCashReturn*100, *out.CashOnCashScore))
	}

	out.Verdict = h.verdict(out.FinalScore, out.HardFail)
	out.Reasoning = reasoning

	h.logger.Info("verdict reached", map[string]interface{}{
		"verdict":    out.Verdict,
		"finalScore": out.FinalScore,
		"hardFail":   out.HardFail,
	})
	return out, nil
}

func (h *Handler) verdict(score float64, hardFail bool) Verdict {
	v := VerdictPass
	switch {
	case score >= h.config.BuyThreshold:
		v = VerdictBuy
	case score >= h.config.WatchThreshold:
		v = VerdictWatch
	}
	if hardFail && v == VerdictBuy {
		v = VerdictWatch
	}
	return v
}

// multiplier maps the confidence level onto the configured multiplier,
// clamped so it can never move the score by more than the configured span.
func (h *Handler) multiplier(level marketconfidence.Level) float64 {
	m := h.config.Multipliers.Medium
	switch level {
	case marketconfidence.LevelLow:
		m = h.config.Multipliers.Low
	case marketconfidence.LevelHigh:
		m = h.config.Multipliers.High
	}
	return clamp(m, 1-h.config.ConfidenceSpan, 1+h.config.ConfidenceSpan)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
