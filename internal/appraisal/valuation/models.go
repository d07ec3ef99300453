// internal/appraisal/valuation/models.go
package valuation

// Input joins the income approach's NOI figures with the reconciled cap rate.
type Input struct {
	NOI           float64 `json:"noi"`
	StabilizedNOI float64 `json:"stabilizedNoi"`
	CapRate       float64 `json:"capRate"`
}

// Output holds the capitalized values.
type Output struct {
	AsIsValue       float64 `json:"asIsValue"`
	StabilizedValue float64 `json:"stabilizedValue"`
}
