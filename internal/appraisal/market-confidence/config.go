// internal/appraisal/market-confidence/config.go
package marketconfidence

import "appraisal-engine/pkg/ratebook"

// Config holds the confidence weights and normalization bounds.
type Config struct {
	Weights             ratebook.ConfidenceWeights
	CountSaturation     float64
	MaxAvgDistanceMiles float64
	MaxSpreadPct        float64
	MaxVariancePct      float64
	HighThreshold       float64
	MediumThreshold     float64
}

func ConfigFromRatebook(rb *ratebook.Ratebook) *Config {
	return &Config{
		Weights:             rb.Confidence.Weights,
		CountSaturation:     rb.Confidence.CountSaturation,
		MaxAvgDistanceMiles: rb.Confidence.MaxAvgDistanceMiles,
		MaxSpreadPct:        rb.Confidence.MaxSpreadPct,
		MaxVariancePct:      rb.Confidence.MaxVariancePct,
		HighThreshold:       rb.Confidence.HighThreshold,
		MediumThreshold:     rb.Confidence.MediumThreshold,
	}
}
