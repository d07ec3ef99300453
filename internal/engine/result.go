// internal/engine/result.go
package engine

import (
	caprate "appraisal-engine/internal/appraisal/cap-rate"
	"appraisal-engine/internal/appraisal/classify"
	dscrloan "appraisal-engine/internal/appraisal/dscr-loan"
	incomeapproach "appraisal-engine/internal/appraisal/income-approach"
	incomescenarios "appraisal-engine/internal/appraisal/income-scenarios"
	marketconfidence "appraisal-engine/internal/appraisal/market-confidence"
	"appraisal-engine/internal/appraisal/proptax"
	"appraisal-engine/internal/appraisal/recommendation"
	riskscore "appraisal-engine/internal/appraisal/risk-score"
	salescomp "appraisal-engine/internal/appraisal/sales-comp"
	"appraisal-engine/internal/appraisal/underwrite"
	valuation "appraisal-engine/internal/appraisal/valuation"
	valueadd "appraisal-engine/internal/appraisal/value-add"
	"appraisal-engine/internal/common/errors"
)

// Result is the full structured output of one evaluation run: every stage's
// output plus the warnings accumulated along the way. Optional stages that
// did not run are nil. The bundle is produced once per run and never mutated
// afterwards.
type Result struct {
	Classification classify.Classification    `json:"classification"`
	RentControl    classify.RentControlResult `json:"rentControl"`

	Income       *incomeapproach.Output   `json:"income"`
	Scenarios    *incomescenarios.Output  `json:"scenarios,omitempty"`
	RiskScore    *riskscore.Output        `json:"riskScore"`
	SalesComp    *salescomp.Output        `json:"salesComp"`
	CapRate      *caprate.Output          `json:"capRate"`
	Valuation    *valuation.Output        `json:"valuation"`
	Loan         *dscrloan.Output         `json:"loan"`
	Confidence   *marketconfidence.Output `json:"confidence"`
	Underwriting *underwrite.Output       `json:"underwriting,omitempty"`
	PropertyTax  *proptax.Estimate        `json:"propertyTax,omitempty"`
	ValueAdd     *valueadd.Output         `json:"valueAdd,omitempty"`

	Recommendation *recommendation.Output `json:"recommendation"`

	Warnings []errors.Warning `json:"warnings"`
}
