// internal/appraisal/risk-score/config.go
package riskscore

import "appraisal-engine/pkg/ratebook"

// Config holds the component weights. Weights sum to 1 (enforced by ratebook
// validation).
type Config struct {
	Weights ratebook.RiskWeights
}

func ConfigFromRatebook(rb *ratebook.Ratebook) *Config {
	return &Config{Weights: rb.RiskWeights}
}
