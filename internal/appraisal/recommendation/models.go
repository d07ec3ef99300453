// internal/appraisal/recommendation/models.go
package recommendation

import marketconfidence "appraisal-engine/internal/appraisal/market-confidence"

// Verdict is the categorical investment call.
type Verdict string

const (
	VerdictBuy   Verdict = "BUY"
	VerdictWatch Verdict = "WATCH"
	VerdictPass  Verdict = "PASS"
)

// Input gathers the upstream results the fusion step scores. ImpliedCapRate
// is NOI over price when a price is known; BenchmarkRate is the reconciled
// market rate it is compared against.
type Input struct {
	ImpliedCapRate *float64 `json:"impliedCapRate,omitempty"`
	BenchmarkRate  float64  `json:"benchmarkRate"`

	AchievedDSCR   float64 `json:"achievedDscr"`
	TargetDSCR     float64 `json:"targetDscr"`
	MeetsThreshold bool    `json:"meetsThreshold"`

	IncomeValue       float64  `json:"incomeValue"`
	CompValue         *float64 `json:"compValue,omitempty"`
	ConfidenceLevel   marketconfidence.Level `json:"confidenceLevel"`
	CashOnCashReturn  *float64 `json:"cashOnCashReturn,omitempty"`
}

// Output is the verdict with every component score and the ordered reasoning
// trail.
type Output struct {
	Verdict    Verdict `json:"verdict"`
	FinalScore float64 `json:"finalScore"`
	BaseScore  float64 `json:"baseScore"`

	CapRateScore         float64  `json:"capRateScore"`
	DSCRScore            float64  `json:"dscrScore"`
	SalesCompScore       float64  `json:"salesCompScore"`
	CashOnCashScore      *float64 `json:"cashOnCashScore,omitempty"`
	ConfidenceMultiplier float64  `json:"confidenceMultiplier"`
	HardFail             bool     `json:"hardFail"`

	Reasoning []string `json:"reasoning"`
}
