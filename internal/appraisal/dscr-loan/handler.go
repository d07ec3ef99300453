// internal/appraisal/dscr-loan/handler.go
package dscrloan

import (
	"context"
	"fmt"
	"math"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "dscr-loan"
)

// dscrEpsilon absorbs the floating error of the annuity round trip when the
// achieved DSCR sits exactly at target.
const dscrEpsilon = 1e-9

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

// Execute sizes the maximum supportable loan. The DSCR leg inverts the
// standard annuity formula to find the principal whose payment equals
// NOI / 12 / target DSCR; the LTV leg caps the loan at price * max LTV. The
// binding amount is the smaller of the two. Non-positive NOI supports no debt
// and yields a zero loan, not an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	target := h.config.MinDSCR
	if input.TargetDSCR != nil {
		target = *input.TargetDSCR
	}
	if target <= 0 {
		return nil, errors.NewInvalidRangeError(Stage, "targetDscr", fmt.Sprintf("must be positive, got %v", target))
	}

	rate := h.config.InterestRate
	if input.InterestRate != nil {
		rate = *input.InterestRate
	}
	if rate < 0 {
		return nil, errors.NewInvalidRangeError(Stage, "interestRate", fmt.Sprintf("must be non-negative, got %v", rate))
	}

	months := h.config.AmortMonths
	if input.AmortMonths != nil {
		months = *input.AmortMonths
	}
	if months <= 0 {
		return nil, errors.NewInvalidRangeError(Stage, "amortMonths", fmt.Sprintf("must be positive, got %v", months))
	}

	maxLTV := h.config.MaxLTV
	if input.MaxLTV != nil {
		maxLTV = *input.MaxLTV
	}
	if maxLTV <= 0 || maxLTV > 1 {
		return nil, errors.NewInvalidRangeError(Stage, "maxLtv", fmt.Sprintf("must be within (0,1], got %v", maxLTV))
	}

	out := &Output{TargetDSCR: target}
	if input.NOI <= 0 {
		h.logger.Warn("non-positive NOI supports no debt", map[string]interface{}{"noi": input.NOI})
		return out, nil
	}

	maxPayment := input.NOI / 12 / target
	out.LoanByDSCR = round2(principalForPayment(maxPayment, rate, months))

	binding := out.LoanByDSCR
	if input.Price != nil && *input.Price > 0 {
		out.LoanByLTV = round2(*input.Price * maxLTV)
		binding = math.Min(binding, out.LoanByLTV)
	}
	out.BindingLoan = round2(binding)

	out.MonthlyPI = round2(paymentForPrincipal(out.BindingLoan, rate, months))
	if out.MonthlyPI > 0 {
		out.AchievedDSCR = round4(input.NOI / 12 / out.MonthlyPI)
	}
	if input.Price != nil && *input.Price > 0 {
		out.AchievedLTV = round4(out.BindingLoan / *input.Price)
	}
	out.MaxPurchasePrice = round2(out.BindingLoan / maxLTV)
	out.MeetsThreshold = out.AchievedDSCR+dscrEpsilon >= target

	h.logger.Debug("loan sized", map[string]interface{}{
		"loanByDscr":  out.LoanByDSCR,
		"loanByLtv":   out.LoanByLTV,
		"bindingLoan": out.BindingLoan,
	})
	return out, nil
}

// principalForPayment inverts the annuity formula:
// L = P * ((1+r)^n - 1) / (r * (1+r)^n). A zero rate degenerates to
// straight-line amortization.
func principalForPayment(payment, annualRate float64, months int) float64 {
	if payment <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return payment * float64(months)
	}
	growth := math.Pow(1+r, float64(months))
	return payment * (growth - 1) / (r * growth)
}

// paymentForPrincipal is the standard annuity payment.
func paymentForPrincipal(principal, annualRate float64, months int) float64 {
	if principal <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal / float64(months)
	}
	growth := math.Pow(1+r, float64(months))
	return principal * r * growth / (growth - 1)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
