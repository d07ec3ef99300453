// internal/engine/engine_test.go
package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketconfidence "appraisal-engine/internal/appraisal/market-confidence"
	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/models"
	"appraisal-engine/pkg/ratebook"
)

// ==========================
// Test Helper Functions
// ==========================

func newEngine(t *testing.T) *Engine {
	e, err := New(ratebook.Default(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func f(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

func bptr(v bool) *bool { return &v }

// fourplexRequest is the baseline request used across the tests: a 4-unit
// building at $1,800/unit, 5% vacancy, 40% expenses, asking $900,000.
func fourplexRequest() *models.AppraisalRequest {
	return &models.AppraisalRequest{
		Listing: models.ListingCore{
			Price:     f(900000),
			Sqft:      f(3600),
			NumUnits:  iptr(4),
			YearBuilt: iptr(1990),
		},
		Income: &models.IncomeInputs{
			MarketRent:   f(1800),
			VacancyRate:  f(0.05),
			ExpenseRatio: f(0.40),
		},
		Enrichment: &models.Enrichment{
			Jurisdiction:   "la city",
			SubmarketClass: "stable",
		},
		SalesComps: []models.SalesComp{
			{Price: 880000, Sqft: 3500, DistanceMiles: 0.4},
			{Price: 910000, Sqft: 3600, DistanceMiles: 0.8},
			{Price: 950000, Sqft: 3700, DistanceMiles: 1.2},
		},
	}
}

// ==========================
// Construction Tests
// ==========================

func TestNew_InvalidRatebook(t *testing.T) {
	rb := ratebook.Default()
	delete(rb.CapRateGrid, "sfr")

	_, err := New(rb, logger.NewTestLogger(t))
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConfigurationInvalid, stdErr.Code)
}

// ==========================
// Pipeline Tests
// ==========================

func TestEngine_Evaluate_IncomeFigures(t *testing.T) {
	e := newEngine(t)

	result, err := e.Evaluate(context.Background(), fourplexRequest())
	require.NoError(t, err)

	// 4 x $1,800 x 12 = $86,400 GPI; 5% vacancy and 40% expenses leave
	// $49,248 NOI.
	assert.Equal(t, 86400.0, result.Income.GPI)
	assert.Equal(t, 82080.0, result.Income.EGI)
	assert.Equal(t, 32832.0, result.Income.OPEX)
	assert.Equal(t, 49248.0, result.Income.NOI)

	// The fourplex classifies into the 2-4 grid bucket.
	assert.Equal(t, "fourplex", result.Classification.PropertyType)
	assert.Equal(t, "2-4", result.Classification.GridBucket)
	assert.Equal(t, 0.045, result.CapRate.BaseRate)
	require.NotNil(t, result.RiskScore)
	require.NotNil(t, result.Recommendation)
}

func TestEngine_Evaluate_FlatRateValuation(t *testing.T) {
	e := newEngine(t)

	req := fourplexRequest()
	// retail/transitional is the 5.5% grid cell; a 50 risk score carries no
	// adjustment and rent control is off, so the rate stays flat.
	req.CapRate = &models.CapRateInputs{
		PropertyType:   "retail",
		SubmarketClass: "transitional",
		RiskScore:      f(50),
		RentControlled: bptr(false),
	}

	result, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0.055, result.CapRate.CapRate)
	assert.Zero(t, result.CapRate.RiskAdjustment)
	// $49,248 / 0.055 = $895,418.18
	assert.InDelta(t, 895418.18, result.Valuation.AsIsValue, 0.01)
}

func TestEngine_Evaluate_LoanSizing(t *testing.T) {
	e := newEngine(t)

	req := fourplexRequest()
	req.Financing = &models.FinancingInputs{
		MinDSCR:      f(1.20),
		InterestRate: f(0.065),
		AmortMonths:  iptr(360),
		MaxLTV:       f(0.75),
	}

	result, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	loan := result.Loan
	assert.Equal(t, 675000.0, loan.LoanByLTV)
	assert.Less(t, loan.LoanByDSCR, loan.LoanByLTV)
	assert.Equal(t, loan.LoanByDSCR, loan.BindingLoan)
	// Achieved DSCR sits at the target when the DSCR leg binds.
	assert.InDelta(t, 1.20, loan.AchievedDSCR, 0.0001)
	assert.True(t, loan.MeetsThreshold)

	// Cash-on-cash flows through to the recommendation.
	require.NotNil(t, result.Underwriting)
	require.NotNil(t, result.Underwriting.CashOnCash)
	require.NotNil(t, result.Recommendation.CashOnCashScore)
}

func TestEngine_Evaluate_NoComps(t *testing.T) {
	e := newEngine(t)

	req := fourplexRequest()
	req.SalesComps = nil

	result, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.SalesComp.Insufficient)
	assert.Equal(t, marketconfidence.LevelLow, result.Confidence.Level)
	assert.Equal(t, 1.0, result.Confidence.Score)
	// The agreement component falls back to the neutral midpoint.
	assert.Equal(t, 50.0, result.Recommendation.SalesCompScore)

	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, errors.ErrCodeInsufficientData, result.Warnings[0].Code)
	assert.Equal(t, "sales-comp", result.Warnings[0].Component)
}

func TestEngine_Evaluate_RentCompFallback(t *testing.T) {
	e := newEngine(t)

	req := fourplexRequest()
	req.Income.MarketRent = nil
	req.RentComps = []models.RentComp{
		{MonthlyRent: 1700},
		{MonthlyRent: 1900},
		{MonthlyRent: 1800},
	}

	result, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "rent-comps", result.Income.RentSource)
	assert.Equal(t, 1800.0, result.Income.MarketRent)
}

func TestEngine_Evaluate_ValueAdd(t *testing.T) {
	e := newEngine(t)

	req := fourplexRequest()
	req.ValueAdd = &models.ValueAddInputs{
		RehabBudget:    f(100000),
		StabilizedRent: f(2100),
		ExitCapRate:    f(0.05),
	}

	result, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, result.ValueAdd)
	assert.Equal(t, 1000000.0, result.ValueAdd.TotalCost)
	assert.Greater(t, result.Income.StabilizedNOI, result.Income.NOI)
	assert.Greater(t, result.Valuation.StabilizedValue, result.Valuation.AsIsValue)
}

func TestEngine_Evaluate_PropertyTaxFoldIn(t *testing.T) {
	e := newEngine(t)

	req := fourplexRequest()
	req.Income.ItemizedExpenses = f(20000)
	req.Income.IncludePropertyTax = true

	result, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, result.PropertyTax)
	// $900,000 x 1.25% = $11,250 stacked on the itemized $20,000.
	assert.Equal(t, 11250.0, result.PropertyTax.AnnualTax)
	assert.Equal(t, 31250.0, result.Income.OPEX)
}

// ==========================
// Error Case Tests
// ==========================

func TestEngine_Evaluate_FatalErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.AppraisalRequest)
		wantCode errors.ErrorCode
	}{
		{
			name: "no rent anywhere",
			mutate: func(r *models.AppraisalRequest) {
				r.Income = nil
				r.RentComps = nil
			},
			wantCode: errors.ErrCodeMissingInput,
		},
		{
			name: "no submarket class",
			mutate: func(r *models.AppraisalRequest) {
				r.Enrichment = nil
			},
			wantCode: errors.ErrCodeMissingInput,
		},
		{
			name: "vacancy out of range",
			mutate: func(r *models.AppraisalRequest) {
				r.Income.VacancyRate = f(1.5)
			},
			wantCode: errors.ErrCodeInvalidRange,
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fourplexRequest()
			tt.mutate(req)

			result, err := e.Evaluate(context.Background(), req)
			require.Error(t, err)
			// All-or-nothing: no partial result on a fatal error.
			assert.Nil(t, result)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

// ==========================
// Invariant Tests
// ==========================

func TestEngine_Evaluate_Deterministic(t *testing.T) {
	e := newEngine(t)

	first, err := e.Evaluate(context.Background(), fourplexRequest())
	require.NoError(t, err)
	second, err := e.Evaluate(context.Background(), fourplexRequest())
	require.NoError(t, err)

	// Branches run concurrently but the result, reasoning order and warning
	// order never depend on completion order.
	assert.Equal(t, first, second)
}

func BenchmarkEngine_Evaluate(b *testing.B) {
	e, err := New(ratebook.Default(), logger.NewNoOpLogger())
	if err != nil {
		b.Fatal(err)
	}
	req := fourplexRequest()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Evaluate(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
