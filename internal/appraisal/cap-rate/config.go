// internal/appraisal/cap-rate/config.go
package caprate

import "appraisal-engine/pkg/ratebook"

// Config is the slice of the ratebook this model consumes.
type Config struct {
	Grid             map[string]map[string]float64
	RiskSteps        []ratebook.RiskStep
	RentControlSteps []ratebook.RentControlStep
	Band             ratebook.Band
}

// ConfigFromRatebook extracts the cap-rate parameters from a validated
// ratebook.
func ConfigFromRatebook(rb *ratebook.Ratebook) *Config {
	return &Config{
		Grid:             rb.CapRateGrid,
		RiskSteps:        rb.RiskAdjustments,
		RentControlSteps: rb.RentControlIncrements,
		Band:             rb.CapRateBand,
	}
}
