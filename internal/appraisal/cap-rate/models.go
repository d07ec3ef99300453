// internal/appraisal/cap-rate/models.go
package caprate

// Input selects a grid cell and the signed adjustments applied on top of it.
type Input struct {
	PropertyType   string   `json:"propertyType"`
	SubmarketClass string   `json:"submarketClass"`
	RiskScore      *float64 `json:"riskScore,omitempty"`
	RentControlled bool     `json:"rentControlled"`
}

// Output retains every adjustment individually so downstream consumers can
// explain how the final rate was reached.
type Output struct {
	BaseRate              float64 `json:"baseRate"`
	RiskAdjustment        float64 `json:"riskAdjustment"`
	RentControlAdjustment float64 `json:"rentControlAdjustment"`
	CapRate               float64 `json:"capRate"`
	Clamped               bool    `json:"clamped"`
}
