// internal/appraisal/recommendation/config.go
package recommendation

import "appraisal-engine/pkg/ratebook"

// Config is the fusion calibration pulled from the ratebook.
type Config struct {
	Weights        ratebook.RecommendationWeights
	BuyThreshold   float64
	WatchThreshold float64
	HardFailMargin float64
	ConfidenceSpan float64
	NeutralScore   float64
	CapRateSpan    float64
	DSCRSpan       float64
	AgreementSpan  float64
	CashOnCashSpan float64
	Multipliers    ratebook.ConfidenceMultipliers
}

func ConfigFromRatebook(rb *ratebook.Ratebook) *Config {
	r := rb.Recommendation
	return &Config{
		Weights:        r.Weights,
		BuyThreshold:   r.BuyThreshold,
		WatchThreshold: r.WatchThreshold,
		HardFailMargin: r.HardFailMargin,
		ConfidenceSpan: r.ConfidenceSpan,
		NeutralScore:   r.NeutralScore,
		CapRateSpan:    r.CapRateSpan,
		DSCRSpan:       r.DSCRSpan,
		AgreementSpan:  r.AgreementSpan,
		CashOnCashSpan: r.CashOnCashSpan,
		Multipliers:    r.Multipliers,
	}
}
