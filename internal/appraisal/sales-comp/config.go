// internal/appraisal/sales-comp/config.go
package salescomp

// Config holds the tunable parameters for the comparable-sales model.
type Config struct {
	// OutlierSigma is the distance from the median price per square foot,
	// in standard deviations, beyond which a comp is discarded.
	OutlierSigma float64 `json:"outlierSigma"`

	// MinComps is the number of usable comps below which the model reports
	// an insufficient-data result instead of a value range.
	MinComps int `json:"minComps"`
}

func LoadConfig() *Config {
	return &Config{
		OutlierSigma: 2.0,
		MinComps:     1,
	}
}
