// internal/appraisal/underwrite/underwrite.go

// Package underwrite computes the cash-flow metrics of a sized loan: DSCR,
// annual cash flow and cash-on-cash return.
package underwrite

import "math"

// Input is the financing outcome being measured.
type Input struct {
	NOI               float64 `json:"noi"`
	AnnualDebtService float64 `json:"annualDebtService"`
	CashInvested      float64 `json:"cashInvested"`
}

// Output carries nil for ratios whose denominator is zero: an all-cash deal
// has no DSCR, and a zero-cash deal has no cash-on-cash return.
type Output struct {
	DSCR           *float64 `json:"dscr,omitempty"`
	AnnualCashFlow float64  `json:"annualCashFlow"`
	CashOnCash     *float64 `json:"cashOnCash,omitempty"`
}

// Compute is pure arithmetic and cannot fail.
func Compute(input Input) Output {
	out := Output{
		AnnualCashFlow: round2(input.NOI - input.AnnualDebtService),
	}
	if input.AnnualDebtService > 0 {
		v := round4(input.NOI / input.AnnualDebtService)
		out.DSCR = &v
	}
	if input.CashInvested > 0 {
		v := round4(out.AnnualCashFlow / input.CashInvested)
		out.CashOnCash = &v
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
