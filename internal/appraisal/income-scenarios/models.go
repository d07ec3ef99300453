// internal/appraisal/income-scenarios/models.go
package incomescenarios

// Input spans the market, downside and optional voucher scenarios off a
// single rent assumption.
type Input struct {
	MarketRent   float64  `json:"marketRent"`
	NumUnits     int      `json:"numUnits"`
	HUDFMRRent   *float64 `json:"hudFmrRent,omitempty"`
	DownsidePct  *float64 `json:"downsidePct,omitempty"`
	VacancyRate  *float64 `json:"vacancyRate,omitempty"`
	ExpenseRatio *float64 `json:"expenseRatio,omitempty"`
}

// Scenario is one rent assumption evaluated through the income approach.
type Scenario struct {
	Name        string  `json:"name"`
	RentPerUnit float64 `json:"rentPerUnit"`
	GPI         float64 `json:"gpi"`
	NOI         float64 `json:"noi"`
}

// Output bundles the scenarios with the downside NOI drop used as the income
// volatility signal.
type Output struct {
	Market   Scenario  `json:"market"`
	Downside Scenario  `json:"downside"`
	Voucher  *Scenario `json:"voucher,omitempty"`

	// NOIDropPct is (market NOI - downside NOI) / market NOI, zero when the
	// market NOI is not positive.
	NOIDropPct float64 `json:"noiDropPct"`
}
