// internal/appraisal/proptax/proptax.go

// Package proptax estimates the annual property tax burden folded into the
// expense side of underwriting.
package proptax

import (
	"fmt"
	"math"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/pkg/ratebook"
)

const Stage = "property-tax"

// Estimate is the effective rate applied to the assessed price.
type Estimate struct {
	EffectiveRate float64 `json:"effectiveRate"`
	AnnualTax     float64 `json:"annualTax"`
	MonthlyTax    float64 `json:"monthlyTax"`
}

// Estimator applies the configured base levy plus local add-ons, or a
// caller-supplied custom rate.
type Estimator struct {
	baseRate   float64
	addOnRate  float64
}

func NewEstimator(defaults ratebook.TaxDefaults) *Estimator {
	return &Estimator{baseRate: defaults.BaseRate, addOnRate: defaults.LocalAddOnRate}
}

func (e *Estimator) Estimate(price float64, customRate *float64) (*Estimate, error) {
	if price < 0 {
		return nil, errors.NewInvalidRangeError(Stage, "price", fmt.Sprintf("must be non-negative, got %v", price))
	}

	rate := e.baseRate + e.addOnRate
	if customRate != nil {
		if *customRate < 0 || *customRate > 1 {
			return nil, errors.NewInvalidRangeError(Stage, "customTaxRate", fmt.Sprintf("must be within [0,1], got %v", *customRate))
		}
		rate = *customRate
	}

	annual := round2(price * rate)
	return &Estimate{
		EffectiveRate: rate,
		AnnualTax:     annual,
		MonthlyTax:    round2(annual / 12),
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
