// internal/appraisal/risk-score/models.go
package riskscore

// Input gathers the enrichment signals the composite score is built from.
// Every field is optional; missing signals fall back to a neutral component
// score rather than failing the run.
type Input struct {
	FloodHighRisk  *bool `json:"floodHighRisk,omitempty"`
	FireHazardZone *bool `json:"fireHazardZone,omitempty"`
	FaultZone      *bool `json:"faultZone,omitempty"`

	RentControlled *bool  `json:"rentControlled,omitempty"`
	Jurisdiction   string `json:"jurisdiction,omitempty"`

	// DSCR and AnnualCashFlow are underwriting hints supplied by the caller
	// (e.g. from a prior evaluation), not this run's loan sizing.
	DSCR           *float64 `json:"dscr,omitempty"`
	AnnualCashFlow *float64 `json:"annualCashFlow,omitempty"`

	YearBuilt    *int   `json:"yearBuilt,omitempty"`
	PropertyType string `json:"propertyType,omitempty"`

	NOIMarket   float64 `json:"noiMarket"`
	NOIDownside float64 `json:"noiDownside"`
}

// Components retains each sub-score for explainability. All are on [0,100]
// where 100 is the least risky.
type Components struct {
	Hazards          float64 `json:"hazards"`
	RentControl      float64 `json:"rentControl"`
	Jurisdiction     float64 `json:"jurisdiction"`
	Underwriting     float64 `json:"underwriting"`
	PropertyAge      float64 `json:"propertyAge"`
	PropertyType     float64 `json:"propertyType"`
	IncomeVolatility float64 `json:"incomeVolatility"`
}

// Output is the composite score. Score runs 0-100 with 100 = lowest risk;
// callers needing a hazard-oriented scale invert it.
type Output struct {
	Score          float64    `json:"score"`
	Grade          string     `json:"grade"`
	Components     Components `json:"components"`
	Interpretation string     `json:"interpretation"`
}
