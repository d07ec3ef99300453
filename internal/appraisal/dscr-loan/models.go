// internal/appraisal/dscr-loan/models.go
package dscrloan

// Input sizes debt capacity off annual NOI. Optional fields fall back to the
// configured financing defaults; Price is the asking price or appraised value
// used for the LTV leg and may be absent.
type Input struct {
	NOI          float64  `json:"noi"`
	TargetDSCR   *float64 `json:"targetDscr,omitempty"`
	InterestRate *float64 `json:"interestRate,omitempty"`
	AmortMonths  *int     `json:"amortMonths,omitempty"`
	MaxLTV       *float64 `json:"maxLtv,omitempty"`
	Price        *float64 `json:"price,omitempty"`
}

// Output reports both loan legs and the binding amount. When Price is absent
// the LTV leg does not constrain and LoanByLTV and AchievedLTV are zero.
type Output struct {
	LoanByDSCR       float64 `json:"loanByDscr"`
	LoanByLTV        float64 `json:"loanByLtv"`
	BindingLoan      float64 `json:"bindingLoan"`
	MonthlyPI        float64 `json:"monthlyPi"`
	MaxPurchasePrice float64 `json:"maxPurchasePrice"`
	AchievedDSCR     float64 `json:"achievedDscr"`
	AchievedLTV      float64 `json:"achievedLtv"`
	MeetsThreshold   bool    `json:"meetsThreshold"`
	TargetDSCR       float64 `json:"targetDscr"`
}
