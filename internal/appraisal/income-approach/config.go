// internal/appraisal/income-approach/config.go
package incomeapproach

// Config holds the income-approach defaults applied when the request leaves a
// field absent.
type Config struct {
	DefaultVacancyRate  float64
	DefaultExpenseRatio float64
}

func LoadConfig() *Config {
	return &Config{
		DefaultVacancyRate:  0.05,
		DefaultExpenseRatio: 0.35,
	}
}
