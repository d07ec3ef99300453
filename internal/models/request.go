// internal/models/request.go
package models

// AppraisalRequest is the input contract of the core: a normalized listing
// plus whatever enrichment the excluded collaborators produced.
type AppraisalRequest struct {
	Listing    ListingCore      `json:"listing"`
	Income     *IncomeInputs    `json:"income,omitempty"`
	CapRate    *CapRateInputs   `json:"capRate,omitempty"`
	SalesComps []SalesComp      `json:"salesComps,omitempty"`
	RentComps  []RentComp       `json:"rentComps,omitempty"`
	Financing  *FinancingInputs `json:"financing,omitempty"`
	Enrichment *Enrichment      `json:"enrichment,omitempty"`
	ValueAdd   *ValueAddInputs  `json:"valueAdd,omitempty"`
}

// IncomeInputs overrides the configured income-approach defaults.
type IncomeInputs struct {
	MarketRent        *float64 `json:"marketRent,omitempty"`
	VacancyRate       *float64 `json:"vacancyRate,omitempty"`
	ExpenseRatio      *float64 `json:"expenseRatio,omitempty"`
	ItemizedExpenses  *float64 `json:"itemizedExpenses,omitempty"`
	ReserveRate       *float64 `json:"reserveRate,omitempty"`
	StabilizedRent    *float64 `json:"stabilizedRent,omitempty"`
	StabilizedVacancy *float64 `json:"stabilizedVacancy,omitempty"`

	// IncludePropertyTax folds an estimated tax bill into itemized expenses.
	// Only meaningful when ItemizedExpenses is supplied.
	IncludePropertyTax bool     `json:"includePropertyTax,omitempty"`
	CustomTaxRate      *float64 `json:"customTaxRate,omitempty"`
}

// CapRateInputs overrides the engine's derived classification.
type CapRateInputs struct {
	PropertyType   string   `json:"propertyType,omitempty"`
	SubmarketClass string   `json:"submarketClass,omitempty"`
	RiskScore      *float64 `json:"riskScore,omitempty"`
	RentControlled *bool    `json:"rentControlled,omitempty"`
}

// FinancingInputs overrides the configured financing defaults.
type FinancingInputs struct {
	InterestRate   *float64 `json:"interestRate,omitempty"`
	AmortMonths    *int     `json:"amortMonths,omitempty"`
	MinDSCR        *float64 `json:"minDscr,omitempty"`
	MaxLTV         *float64 `json:"maxLtv,omitempty"`
	ClosingCostPct *float64 `json:"closingCostPct,omitempty"`
}

// Enrichment carries optional risk and jurisdiction flags produced by the
// external lookup collaborators.
type Enrichment struct {
	Jurisdiction   string   `json:"jurisdiction,omitempty"`
	SubmarketClass string   `json:"submarketClass,omitempty"`
	FloodHighRisk  *bool    `json:"floodHighRisk,omitempty"`
	FireHazardZone *bool    `json:"fireHazardZone,omitempty"`
	FaultZone      *bool    `json:"faultZone,omitempty"`
	HUDFMRRent     *float64 `json:"hudFmrRent,omitempty"`
	DownsidePct    *float64 `json:"downsidePct,omitempty"`
}

// ValueAddInputs switches on the optional value-add model.
type ValueAddInputs struct {
	RehabBudget    *float64 `json:"rehabBudget,omitempty"`
	StabilizedRent *float64 `json:"stabilizedRent,omitempty"`
	ExitCapRate    *float64 `json:"exitCapRate,omitempty"`
}
