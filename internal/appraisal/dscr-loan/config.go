// internal/appraisal/dscr-loan/config.go
package dscrloan

import "appraisal-engine/pkg/ratebook"

// Config carries the financing assumptions applied when the request does not
// override them.
type Config struct {
	InterestRate float64
	AmortMonths  int
	MinDSCR      float64
	MaxLTV       float64
}

func ConfigFromRatebook(rb *ratebook.Ratebook) *Config {
	return &Config{
		InterestRate: rb.FinancingDefaults.InterestRate,
		AmortMonths:  rb.FinancingDefaults.AmortMonths,
		MinDSCR:      rb.FinancingDefaults.MinDSCR,
		MaxLTV:       rb.FinancingDefaults.MaxLTV,
	}
}
