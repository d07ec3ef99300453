// pkg/ratebook/schema.go
package ratebook

// Ratebook is the versioned parameter registry holding every calibratable
// constant of the appraisal pipeline. All numeric rates are fractions, not
// percentages.
type Ratebook struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`

	// CapRateGrid maps property-type bucket x submarket class to a base cap
	// rate.
	CapRateGrid map[string]map[string]float64 `json:"capRateGrid"`

	// RiskAdjustments is an ordered step function over the 0-100 risk score.
	// A score strictly below Below takes Adjustment; the last step must have
	// Below > 100 to act as catch-all.
	RiskAdjustments []RiskStep `json:"riskAdjustments"`

	// RentControlIncrements keys the additive rent-control premium off the
	// base rate band. The last step must have MaxBaseRate >= 1 as catch-all.
	RentControlIncrements []RentControlStep `json:"rentControlIncrements"`

	// CapRateBand is the plausible band the final rate is clamped to.
	CapRateBand Band `json:"capRateBand"`

	// OutlierSigma is the sales-comp filter threshold in standard deviations
	// from the median PPSF.
	OutlierSigma float64 `json:"outlierSigma"`

	Confidence     ConfidenceParams     `json:"confidence"`
	Recommendation RecommendationParams `json:"recommendation"`
	RiskWeights    RiskWeights          `json:"riskWeights"`

	IncomeDefaults    IncomeDefaults    `json:"incomeDefaults"`
	FinancingDefaults FinancingDefaults `json:"financingDefaults"`
	TaxDefaults       TaxDefaults       `json:"taxDefaults"`
}

type RiskStep struct {
	Below      float64 `json:"below"`
	Adjustment float64 `json:"adjustment"`
}

type RentControlStep struct {
	MaxBaseRate float64 `json:"maxBaseRate"`
	Adjustment  float64 `json:"adjustment"`
}

type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ConfidenceParams calibrates the market-confidence scorer.
type ConfidenceParams struct {
	Weights ConfidenceWeights `json:"weights"`

	// CountSaturation is the retained comp count at which the count sub-score
	// saturates.
	CountSaturation float64 `json:"countSaturation"`

	// MaxAvgDistanceMiles is where the distance sub-score reaches zero.
	MaxAvgDistanceMiles float64 `json:"maxAvgDistanceMiles"`

	// MaxSpreadPct is where the spread sub-score reaches zero.
	MaxSpreadPct float64 `json:"maxSpreadPct"`

	// MaxVariancePct is where the variance sub-score reaches zero, expressed
	// as coefficient of variation of PPSF.
	MaxVariancePct float64 `json:"maxVariancePct"`

	HighThreshold   float64 `json:"highThreshold"`
	MediumThreshold float64 `json:"mediumThreshold"`
}

type ConfidenceWeights struct {
	Count    float64 `json:"count"`
	Distance float64 `json:"distance"`
	Spread   float64 `json:"spread"`
	Variance float64 `json:"variance"`
}

// RecommendationParams calibrates the fusion step.
type RecommendationParams struct {
	Weights RecommendationWeights `json:"weights"`

	BuyThreshold   float64 `json:"buyThreshold"`
	WatchThreshold float64 `json:"watchThreshold"`

	// HardFailMargin: an achieved DSCR below target*(1-margin) caps the
	// verdict at WATCH.
	HardFailMargin float64 `json:"hardFailMargin"`

	// ConfidenceSpan bounds the confidence multiplier to [1-span, 1+span].
	ConfidenceSpan float64 `json:"confidenceSpan"`

	// NeutralScore is the midpoint component score used when sales comps are
	// insufficient.
	NeutralScore float64 `json:"neutralScore"`

	// CapRateSpan is the implied-vs-benchmark rate delta, as a fraction, that
	// moves the cap-rate component score from the midpoint to either bound.
	CapRateSpan float64 `json:"capRateSpan"`

	// DSCRSpan is the achieved-minus-target DSCR delta that moves the DSCR
	// component score from the midpoint to either bound.
	DSCRSpan float64 `json:"dscrSpan"`

	// AgreementSpan is the income-vs-comp divergence fraction at which the
	// sales-comp agreement score reaches zero.
	AgreementSpan float64 `json:"agreementSpan"`

	// CashOnCashSpan is the cash-on-cash return at which that component
	// score saturates.
	CashOnCashSpan float64 `json:"cashOnCashSpan"`

	Multipliers ConfidenceMultipliers `json:"multipliers"`
}

type RecommendationWeights struct {
	CapRate    float64 `json:"capRate"`
	DSCR       float64 `json:"dscr"`
	SalesComp  float64 `json:"salesComp"`
	CashOnCash float64 `json:"cashOnCash"`
}

type ConfidenceMultipliers struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// RiskWeights calibrates the composite risk score.
type RiskWeights struct {
	Hazards          float64 `json:"hazards"`
	RentControl      float64 `json:"rentControl"`
	Jurisdiction     float64 `json:"jurisdiction"`
	Underwriting     float64 `json:"underwriting"`
	PropertyAge      float64 `json:"propertyAge"`
	PropertyType     float64 `json:"propertyType"`
	IncomeVolatility float64 `json:"incomeVolatility"`
}

type IncomeDefaults struct {
	VacancyRate  float64 `json:"vacancyRate"`
	ExpenseRatio float64 `json:"expenseRatio"`
	DownsidePct  float64 `json:"downsidePct"`
}

type FinancingDefaults struct {
	InterestRate   float64 `json:"interestRate"`
	AmortMonths    int     `json:"amortMonths"`
	MinDSCR        float64 `json:"minDscr"`
	MaxLTV         float64 `json:"maxLtv"`
	ClosingCostPct float64 `json:"closingCostPct"`
}

type TaxDefaults struct {
	BaseRate       float64 `json:"baseRate"`
	LocalAddOnRate float64 `json:"localAddOnRate"`
}

// PropertyTypes are the grid's property-type buckets.
var PropertyTypes = []string{"sfr", "2-4", "5+", "mixed_use", "retail", "office", "industrial", "land"}

// SubmarketClasses are the grid's submarket quality classes.
var SubmarketClasses = []string{"prime", "core", "stable", "transitional", "distressed"}
