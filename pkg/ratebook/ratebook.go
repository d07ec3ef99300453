// pkg/ratebook/ratebook.go
package ratebook

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"appraisal-engine/internal/common/errors"
)

// Load reads a ratebook override file.
func Load(path string) (*Ratebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rb Ratebook
	if err := json.Unmarshal(data, &rb); err != nil {
		return nil, err
	}
	return &rb, nil
}

// Validate checks the ratebook for completeness. Called once at engine
// construction; a failure here is a ConfigurationError, not a per-run error.
func (rb *Ratebook) Validate() error {
	for _, pt := range PropertyTypes {
		row, ok := rb.CapRateGrid[pt]
		if !ok {
			return errors.NewConfigurationError(fmt.Sprintf("capRateGrid missing property type %q", pt))
		}
		for _, sc := range SubmarketClasses {
			rate, ok := row[sc]
			if !ok {
				return errors.NewConfigurationError(fmt.Sprintf("capRateGrid missing cell %q x %q", pt, sc))
			}
			if rate <= 0 {
				return errors.NewConfigurationError(fmt.Sprintf("capRateGrid cell %q x %q must be positive", pt, sc))
			}
		}
	}

	if rb.CapRateBand.Min <= 0 || rb.CapRateBand.Max <= rb.CapRateBand.Min {
		return errors.NewConfigurationError("capRateBand must satisfy 0 < min < max")
	}

	if len(rb.RiskAdjustments) == 0 {
		return errors.NewConfigurationError("riskAdjustments must not be empty")
	}
	prev := math.Inf(-1)
	prevAdj := math.Inf(-1)
	for i, step := range rb.RiskAdjustments {
		if step.Below <= prev {
			return errors.NewConfigurationError(fmt.Sprintf("riskAdjustments[%d] steps must be strictly increasing", i))
		}
		if step.Adjustment < prevAdj {
			return errors.NewConfigurationError(fmt.Sprintf("riskAdjustments[%d] must be monotonically non-decreasing", i))
		}
		prev = step.Below
		prevAdj = step.Adjustment
	}
	if rb.RiskAdjustments[len(rb.RiskAdjustments)-1].Below <= 100 {
		return errors.NewConfigurationError("riskAdjustments must end with a catch-all step (below > 100)")
	}

	if len(rb.RentControlIncrements) == 0 {
		return errors.NewConfigurationError("rentControlIncrements must not be empty")
	}
	if rb.RentControlIncrements[len(rb.RentControlIncrements)-1].MaxBaseRate < 1 {
		return errors.NewConfigurationError("rentControlIncrements must end with a catch-all step (maxBaseRate >= 1)")
	}

	if rb.OutlierSigma <= 0 {
		return errors.NewConfigurationError("outlierSigma must be positive")
	}

	cw := rb.Confidence.Weights
	if !sumsToOne(cw.Count, cw.Distance, cw.Spread, cw.Variance) {
		return errors.NewConfigurationError("confidence.weights must sum to 1")
	}
	if rb.Confidence.HighThreshold <= rb.Confidence.MediumThreshold {
		return errors.NewConfigurationError("confidence thresholds must satisfy high > medium")
	}

	rw := rb.Recommendation.Weights
	if !sumsToOne(rw.CapRate, rw.DSCR, rw.SalesComp, rw.CashOnCash) {
		return errors.NewConfigurationError("recommendation.weights must sum to 1")
	}
	if rb.Recommendation.BuyThreshold <= rb.Recommendation.WatchThreshold {
		return errors.NewConfigurationError("recommendation thresholds must satisfy buy > watch")
	}
	if rb.Recommendation.ConfidenceSpan < 0 || rb.Recommendation.ConfidenceSpan > 0.5 {
		return errors.NewConfigurationError("recommendation.confidenceSpan must be within [0, 0.5]")
	}
	if rb.Recommendation.CapRateSpan <= 0 || rb.Recommendation.DSCRSpan <= 0 ||
		rb.Recommendation.AgreementSpan <= 0 || rb.Recommendation.CashOnCashSpan <= 0 {
		return errors.NewConfigurationError("recommendation component spans must be positive")
	}

	kw := rb.RiskWeights
	if !sumsToOne(kw.Hazards, kw.RentControl, kw.Jurisdiction, kw.Underwriting, kw.PropertyAge, kw.PropertyType, kw.IncomeVolatility) {
		return errors.NewConfigurationError("riskWeights must sum to 1")
	}

	id := rb.IncomeDefaults
	if id.VacancyRate < 0 || id.VacancyRate > 1 || id.ExpenseRatio < 0 || id.ExpenseRatio > 1 {
		return errors.NewConfigurationError("incomeDefaults rates must be within [0, 1]")
	}

	fd := rb.FinancingDefaults
	if fd.MinDSCR <= 0 || fd.MaxLTV <= 0 || fd.MaxLTV > 1 || fd.AmortMonths <= 0 {
		return errors.NewConfigurationError("financingDefaults must have positive minDscr, amortMonths and maxLtv in (0, 1]")
	}

	return nil
}

// BaseRate looks up the grid cell for a property-type bucket and submarket
// class. The caller is responsible for bucket normalization.
func (rb *Ratebook) BaseRate(propertyType, submarketClass string) (float64, bool) {
	row, ok := rb.CapRateGrid[propertyType]
	if !ok {
		return 0, false
	}
	rate, ok := row[submarketClass]
	return rate, ok
}

func sumsToOne(vals ...float64) bool {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return math.Abs(sum-1.0) < 1e-9
}
