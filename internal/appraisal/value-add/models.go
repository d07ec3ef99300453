// internal/appraisal/value-add/models.go
package valueadd

// Input describes a renovate-and-stabilize play.
type Input struct {
	PurchasePrice float64 `json:"purchasePrice"`
	RehabBudget   float64 `json:"rehabBudget"`
	NOIInitial    float64 `json:"noiInitial"`
	NOIStabilized float64 `json:"noiStabilized"`
	ExitCapRate   float64 `json:"exitCapRate"`
	HoldYears     int     `json:"holdYears"`
}

// Output holds the directional value-add metrics. This is a screening model,
// not a full DCF.
type Output struct {
	TotalCost       float64  `json:"totalCost"`
	GoingInCapRate  float64  `json:"goingInCapRate"`
	YieldOnCost     float64  `json:"yieldOnCost"`
	ExitValue       float64  `json:"exitValue"`
	EquityCreation  float64  `json:"equityCreation"`
	SimpleIRR       *float64 `json:"simpleIrr,omitempty"`
	HoldYears       int      `json:"holdYears"`
}
