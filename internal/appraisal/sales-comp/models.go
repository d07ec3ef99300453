// internal/appraisal/sales-comp/models.go
package salescomp

import "appraisal-engine/internal/models"

// Input carries the subject's square footage and the raw comparable sales.
type Input struct {
	SubjectSqft *float64          `json:"subjectSqft,omitempty"`
	Comps       []models.SalesComp `json:"comps,omitempty"`
}

// Output is the comp-derived value range. When Insufficient is true the
// value fields are zero and the caller should treat the result as advisory
// only; it is not an error.
type Output struct {
	Insufficient bool `json:"insufficient"`

	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`

	PPSFLow    float64 `json:"ppsfLow"`
	PPSFMedian float64 `json:"ppsfMedian"`
	PPSFHigh   float64 `json:"ppsfHigh"`
	PPSFStdDev float64 `json:"ppsfStdDev"`

	// SpreadPct is (high-low)/median of the value range, used downstream as
	// a dispersion signal.
	SpreadPct        float64 `json:"spreadPct"`
	AvgDistanceMiles float64 `json:"avgDistanceMiles"`

	UsedCount      int `json:"usedCount"`
	DiscardedCount int `json:"discardedCount"`
}
