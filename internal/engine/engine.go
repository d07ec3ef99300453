// internal/engine/engine.go

// Package engine orchestrates the appraisal pipeline: it fills configured
// defaults, runs the three independent leaf branches concurrently, joins them
// into the dependent stages and assembles the final result bundle.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

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
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/metrics"
	"appraisal-engine/internal/models"
	"appraisal-engine/pkg/ratebook"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Engine evaluates appraisal requests against a validated ratebook. It holds
// no per-run state, so a single instance serves concurrent evaluations.
type Engine struct {
	ratebook *ratebook.Ratebook
	logger   logger.Logger
	tracer   trace.Tracer

	income     *incomeapproach.Handler
	scenarios  *incomescenarios.Handler
	salesComp  *salescomp.Handler
	capRate    *caprate.Handler
	valuation  *valuation.Handler
	loan       *dscrloan.Handler
	confidence *marketconfidence.Handler
	risk       *riskscore.Handler
	valueAdd   *valueadd.Handler
	recommend  *recommendation.Handler
	tax        *proptax.Estimator
}

// New validates the ratebook and wires the stage handlers. A bad ratebook is
// a construction-time ConfigurationError, never a per-run failure.
func New(rb *ratebook.Ratebook, log logger.Logger) (*Engine, error) {
	if err := rb.Validate(); err != nil {
		return nil, err
	}

	incomeHandler := incomeapproach.NewHandler(&incomeapproach.Config{
		DefaultVacancyRate:  rb.IncomeDefaults.VacancyRate,
		DefaultExpenseRatio: rb.IncomeDefaults.ExpenseRatio,
	}, log)

	return &Engine{
		ratebook:   rb,
		logger:     log.WithFields(map[string]interface{}{"component": "engine"}),
		tracer:     otel.Tracer("appraisal-engine/engine"),
		income:     incomeHandler,
		scenarios:  incomescenarios.NewHandler(incomeHandler, log),
		salesComp:  salescomp.NewHandler(&salescomp.Config{OutlierSigma: rb.OutlierSigma, MinComps: 1}, log),
		capRate:    caprate.NewHandler(caprate.ConfigFromRatebook(rb), log),
		valuation:  valuation.NewHandler(log),
		loan:       dscrloan.NewHandler(dscrloan.ConfigFromRatebook(rb), log),
		confidence: marketconfidence.NewHandler(marketconfidence.ConfigFromRatebook(rb), log),
		risk:       riskscore.NewHandler(riskscore.ConfigFromRatebook(rb), log),
		valueAdd:   valueadd.NewHandler(log),
		recommend:  recommendation.NewHandler(recommendation.ConfigFromRatebook(rb), log),
		tax:        proptax.NewEstimator(rb.TaxDefaults),
	}, nil
}

// Evaluate runs one listing through the full pipeline. The run is
// all-or-nothing: a fatal error from any stage discards every completed
// branch and surfaces the error; non-fatal degradation is reported through
// the result's warnings instead.
func (e *Engine) Evaluate(ctx context.Context, req *models.AppraisalRequest) (*Result, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "pipeline")
	defer span.End()
	result := &Result{Warnings: []errors.Warning{}}

	p := e.prepare(req)
	result.Classification = p.classification
	result.RentControl = p.rentControl
	if p.taxEstimate != nil {
		result.PropertyTax = p.taxEstimate
	}

	// The three leaf branches share no mutable state and join below. Branch
	// completion order never leaks into the result: outputs land in fixed
	// slots and errors are inspected in a fixed order.
	var wg sync.WaitGroup
	var incomeErr, compErr, capErr error

	wg.Add(3)
	go func() {
		defer wg.Done()
		result.Income, incomeErr = e.runIncome(ctx, p)
	}()
	go func() {
		defer wg.Done()
		result.SalesComp, compErr = e.runSalesComp(ctx, p)
	}()
	go func() {
		defer wg.Done()
		result.Scenarios, result.RiskScore, result.CapRate, capErr = e.runCapRateBranch(ctx, p)
	}()
	wg.Wait()

	for _, err := range []error{incomeErr, compErr, capErr, ctx.Err()} {
		if err != nil {
			return nil, err
		}
	}

	// Join stages.
	val, err := e.valuation.Execute(ctx, &valuation.Input{
		NOI:           result.Income.NOI,
		StabilizedNOI: result.Income.StabilizedNOI,
		CapRate:       result.CapRate.CapRate,
	})
	if err != nil {
		return nil, err
	}
	result.Valuation = val

	loanOut, err := e.runLoan(ctx, p, result.Income.NOI)
	if err != nil {
		return nil, err
	}
	result.Loan = loanOut

	conf, err := e.confidence.Execute(ctx, &marketconfidence.Input{
		CompCount:        result.SalesComp.UsedCount,
		AvgDistanceMiles: result.SalesComp.AvgDistanceMiles,
		SpreadPct:        result.SalesComp.SpreadPct,
		PPSFMedian:       result.SalesComp.PPSFMedian,
		PPSFStdDev:       result.SalesComp.PPSFStdDev,
	})
	if err != nil {
		return nil, err
	}
	result.Confidence = conf

	result.Underwriting = e.runUnderwrite(p, result.Income.NOI, loanOut)

	va, err := e.runValueAdd(ctx, p, result)
	if err != nil {
		return nil, err
	}
	result.ValueAdd = va

	rec, err := e.recommend.Execute(ctx, e.recommendationInput(p, result))
	if err != nil {
		return nil, err
	}
	result.Recommendation = rec

	result.Warnings = e.collectWarnings(p, result)

	metrics.StageDuration.WithLabelValues("evaluate").Observe(time.Since(start).Seconds())
	e.logger.Info("evaluation complete", map[string]interface{}{
		"verdict":  rec.Verdict,
		"warnings": len(result.Warnings),
	})
	return result, nil
}

// prepared is the per-run snapshot built from the request plus configured
// defaults before any branch starts.
type prepared struct {
	req            *models.AppraisalRequest
	classification classify.Classification
	rentControl    classify.RentControlResult
	numUnits       int
	resolvedRent   *float64
	itemized       *float64
	taxEstimate    *proptax.Estimate
	capInput       caprate.Input
	rentCtlKnown   bool
}

func (e *Engine) prepare(req *models.AppraisalRequest) *prepared {
	p := &prepared{req: req}
	listing := req.Listing

	p.classification = classify.PropertyType(listing.NumUnits, listing.PropertyTypeLabel, listing.ZoningCode)

	jurisdiction := ""
	if req.Enrichment != nil {
		jurisdiction = req.Enrichment.Jurisdiction
	}
	p.rentControl = classify.RentControl(listing.YearBuilt, p.classification.PropertyType, jurisdiction, listing.NumUnits)

	p.numUnits = 1
	if listing.NumUnits != nil && *listing.NumUnits > 0 {
		p.numUnits = *listing.NumUnits
	}

	if req.Income != nil && req.Income.MarketRent != nil {
		p.resolvedRent = req.Income.MarketRent
	} else if len(req.RentComps) > 0 {
		rents := make([]float64, len(req.RentComps))
		for i, rc := range req.RentComps {
			rents[i] = rc.MonthlyRent
		}
		sort.Float64s(rents)
		m := medianOf(rents)
		p.resolvedRent = &m
	}

	// Optional property-tax fold-in: only itemized expense stacks can absorb
	// the estimate, ratio-based OPEX already prices taxes in.
	if req.Income != nil {
		p.itemized = req.Income.ItemizedExpenses
		if listing.Price != nil {
			if est, err := e.tax.Estimate(*listing.Price, req.Income.CustomTaxRate); err == nil {
				p.taxEstimate = est
				if req.Income.IncludePropertyTax && p.itemized != nil {
					total := *p.itemized + est.AnnualTax
					p.itemized = &total
				}
			}
		}
	}

	p.capInput = caprate.Input{PropertyType: p.classification.GridBucket}
	if req.Enrichment != nil && req.Enrichment.SubmarketClass != "" {
		p.capInput.SubmarketClass = req.Enrichment.SubmarketClass
	}
	if req.CapRate != nil {
		if req.CapRate.PropertyType != "" {
			p.capInput.PropertyType = req.CapRate.PropertyType
		}
		if req.CapRate.SubmarketClass != "" {
			p.capInput.SubmarketClass = req.CapRate.SubmarketClass
		}
		p.capInput.RiskScore = req.CapRate.RiskScore
	}

	// Rent-control state: an explicit flag wins, then the classifier's call.
	switch {
	case req.CapRate != nil && req.CapRate.RentControlled != nil:
		p.capInput.RentControlled = *req.CapRate.RentControlled
		p.rentCtlKnown = true
	case p.rentControl.Applies != nil:
		p.capInput.RentControlled = *p.rentControl.Applies
		p.rentCtlKnown = true
	}

	return p
}

func (e *Engine) runIncome(ctx context.Context, p *prepared) (*incomeapproach.Output, error) {
	ctx, span := e.tracer.Start(ctx, incomeapproach.Stage)
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(incomeapproach.Stage).Observe(time.Since(start).Seconds())
	}()

	input := &incomeapproach.Input{
		NumUnits:         p.numUnits,
		ItemizedExpenses: p.itemized,
	}
	if income := p.req.Income; income != nil {
		input.MarketRent = income.MarketRent
		input.VacancyRate = income.VacancyRate
		input.ExpenseRatio = income.ExpenseRatio
		input.ReserveRate = income.ReserveRate
		input.StabilizedRent = income.StabilizedRent
		input.StabilizedVacancy = income.StabilizedVacancy
	}
	if input.StabilizedRent == nil && p.req.ValueAdd != nil {
		input.StabilizedRent = p.req.ValueAdd.StabilizedRent
	}
	if input.MarketRent == nil {
		for _, rc := range p.req.RentComps {
			input.CompRents = append(input.CompRents, rc.MonthlyRent)
		}
	}
	return e.income.Execute(ctx, input)
}

func (e *Engine) runSalesComp(ctx context.Context, p *prepared) (*salescomp.Output, error) {
	ctx, span := e.tracer.Start(ctx, salescomp.Stage)
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(salescomp.Stage).Observe(time.Since(start).Seconds())
	}()

	if p.req.Listing.Sqft == nil {
		// Without subject square footage the comp model cannot normalize;
		// treated like an empty comp set rather than a fatal error.
		return &salescomp.Output{Insufficient: true}, nil
	}
	return e.salesComp.Execute(ctx, &salescomp.Input{
		SubjectSqft: p.req.Listing.Sqft,
		Comps:       p.req.SalesComps,
	})
}

// runCapRateBranch chains scenarios -> risk score -> cap rate. The request's
// explicit risk score bypasses the composite; otherwise the composite is
// inverted, since the risk score grades 100 as safest while the cap-rate
// curve expects 100 as riskiest.
func (e *Engine) runCapRateBranch(ctx context.Context, p *prepared) (*incomescenarios.Output, *riskscore.Output, *caprate.Output, error) {
	ctx, span := e.tracer.Start(ctx, caprate.Stage)
	defer span.End()
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(caprate.Stage).Observe(time.Since(start).Seconds())
	}()

	var scen *incomescenarios.Output
	if p.resolvedRent != nil {
		scenInput := &incomescenarios.Input{
			MarketRent: *p.resolvedRent,
			NumUnits:   p.numUnits,
		}
		if income := p.req.Income; income != nil {
			scenInput.VacancyRate = income.VacancyRate
			scenInput.ExpenseRatio = income.ExpenseRatio
		}
		if enr := p.req.Enrichment; enr != nil {
			scenInput.HUDFMRRent = enr.HUDFMRRent
			scenInput.DownsidePct = enr.DownsidePct
		}
		var err error
		if scen, err = e.scenarios.Execute(ctx, scenInput); err != nil {
			return nil, nil, nil, err
		}
	}

	riskInput := &riskscore.Input{
		Jurisdiction: p.rentControl.Jurisdiction,
		PropertyType: p.classification.PropertyType,
		YearBuilt:    p.req.Listing.YearBuilt,
	}
	if enr := p.req.Enrichment; enr != nil {
		riskInput.FloodHighRisk = enr.FloodHighRisk
		riskInput.FireHazardZone = enr.FireHazardZone
		riskInput.FaultZone = enr.FaultZone
	}
	if p.rentCtlKnown {
		riskInput.RentControlled = &p.capInput.RentControlled
	}
	if scen != nil {
		riskInput.NOIMarket = scen.Market.NOI
		riskInput.NOIDownside = scen.Downside.NOI
	}
	riskOut, err := e.risk.Execute(ctx, riskInput)
	if err != nil {
		return nil, nil, nil, err
	}

	capInput := p.capInput
	if capInput.RiskScore == nil {
		inverted := 100 - riskOut.Score
		capInput.RiskScore = &inverted
	}
	capOut, err := e.capRate.Execute(ctx, &capInput)
	if err != nil {
		return nil, nil, nil, err
	}
	return scen, riskOut, capOut, nil
}

func (e *Engine) runLoan(ctx context.Context, p *prepared, noi float64) (*dscrloan.Output, error) {
	input := &dscrloan.Input{
		NOI:   noi,
		Price: p.req.Listing.Price,
	}
	if fin := p.req.Financing; fin != nil {
		input.TargetDSCR = fin.MinDSCR
		input.InterestRate = fin.InterestRate
		input.AmortMonths = fin.AmortMonths
		input.MaxLTV = fin.MaxLTV
	}
	return e.loan.Execute(ctx, input)
}

// runUnderwrite measures the cash position at the sized loan. Skipped when
// there is no price to anchor the equity requirement.
func (e *Engine) runUnderwrite(p *prepared, noi float64, loan *dscrloan.Output) *underwrite.Output {
	price := p.req.Listing.Price
	if price == nil || *price <= 0 {
		return nil
	}

	closingPct := e.ratebook.FinancingDefaults.ClosingCostPct
	if fin := p.req.Financing; fin != nil && fin.ClosingCostPct != nil {
		closingPct = *fin.ClosingCostPct
	}

	out := underwrite.Compute(underwrite.Input{
		NOI:               noi,
		AnnualDebtService: loan.MonthlyPI * 12,
		CashInvested:      (*price - loan.BindingLoan) + *price*closingPct,
	})
	return &out
}

// runValueAdd runs the optional rehab model when the request carries a rehab
// budget and the listing has a price. Exit cap defaults to this run's
// reconciled rate.
func (e *Engine) runValueAdd(ctx context.Context, p *prepared, result *Result) (*valueadd.Output, error) {
	va := p.req.ValueAdd
	if va == nil || va.RehabBudget == nil || p.req.Listing.Price == nil {
		return nil, nil
	}

	exitCap := result.CapRate.CapRate
	if va.ExitCapRate != nil {
		exitCap = *va.ExitCapRate
	}
	return e.valueAdd.Execute(ctx, &valueadd.Input{
		PurchasePrice: *p.req.Listing.Price,
		RehabBudget:   *va.RehabBudget,
		NOIInitial:    result.Income.NOI,
		NOIStabilized: result.Income.StabilizedNOI,
		ExitCapRate:   exitCap,
	})
}

func (e *Engine) recommendationInput(p *prepared, result *Result) *recommendation.Input {
	input := &recommendation.Input{
		BenchmarkRate:   result.CapRate.CapRate,
		AchievedDSCR:    result.Loan.AchievedDSCR,
		TargetDSCR:      result.Loan.TargetDSCR,
		MeetsThreshold:  result.Loan.MeetsThreshold,
		IncomeValue:     result.Valuation.AsIsValue,
		ConfidenceLevel: result.Confidence.Level,
	}
	if price := p.req.Listing.Price; price != nil && *price > 0 {
		implied := result.Income.NOI / *price
		input.ImpliedCapRate = &implied
	}
	if !result.SalesComp.Insufficient {
		input.CompValue = &result.SalesComp.Median
	}
	if result.Underwriting != nil {
		input.CashOnCashReturn = result.Underwriting.CashOnCash
	}
	return input
}

// collectWarnings appends non-fatal degradation notes in a fixed order so
// identical requests always report identical warning lists.
func (e *Engine) collectWarnings(p *prepared, result *Result) []errors.Warning {
	warnings := []errors.Warning{}
	if result.SalesComp.Insufficient {
		warnings = append(warnings, errors.NewInsufficientDataWarning(salescomp.Stage,
			"insufficient comparable sales; value range unavailable and confidence floored"))
	}
	if !p.rentCtlKnown {
		warnings = append(warnings, errors.NewInsufficientDataWarning(caprate.Stage,
			"rent-control status unknown; no increment applied"))
	}
	if p.req.Listing.Price == nil {
		warnings = append(warnings, errors.NewInsufficientDataWarning(dscrloan.Stage,
			"no asking price; LTV leg unconstrained and cap-rate comparison held neutral"))
	}
	return warnings
}

// medianOf expects a sorted slice.
func medianOf(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
