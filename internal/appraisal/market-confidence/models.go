// internal/appraisal/market-confidence/models.go
package marketconfidence

// Level buckets the numeric confidence score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Input is the sales-comp statistics the score is derived from. PPSFMedian
// and PPSFStdDev together give the dispersion signal.
type Input struct {
	CompCount        int     `json:"compCount"`
	AvgDistanceMiles float64 `json:"avgDistanceMiles"`
	SpreadPct        float64 `json:"spreadPct"`
	PPSFMedian       float64 `json:"ppsfMedian"`
	PPSFStdDev       float64 `json:"ppsfStdDev"`
}

// Output is the reliability verdict with its sub-scores retained for
// explainability. Sub-scores are in [0,1]; Score is rescaled to [1,5].
type Output struct {
	Score float64 `json:"score"`
	Level Level   `json:"level"`

	CountScore    float64 `json:"countScore"`
	DistanceScore float64 `json:"distanceScore"`
	SpreadScore   float64 `json:"spreadScore"`
	VarianceScore float64 `json:"varianceScore"`

	CompCount        int     `json:"compCount"`
	AvgDistanceMiles float64 `json:"avgDistanceMiles"`
	SpreadPct        float64 `json:"spreadPct"`
}
