// internal/appraisal/risk-score/handler_test.go
package riskscore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-engine/internal/common/logger"
	"appraisal-engine/pkg/ratebook"
)

func newHandler(t *testing.T) *Handler {
	return NewHandler(ConfigFromRatebook(ratebook.Default()), logger.NewTestLogger(t))
}

func bptr(v bool) *bool { return &v }

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_NeutralOnEmptyInput(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	// hazards 100*.15 + rent control 70*.15 + jurisdiction 85*.10 +
	// underwriting 80*.25 + age 75*.10 + type 70*.10 + volatility 70*.15 = 79.00
	assert.Equal(t, 79.0, out.Score)
	assert.Equal(t, "B", out.Grade)
	assert.Equal(t, 100.0, out.Components.Hazards)
	assert.Equal(t, 70.0, out.Components.RentControl)
}

func TestHandler_Execute_StrongSubject(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		FloodHighRisk:  bptr(false),
		FireHazardZone: bptr(false),
		RentControlled: bptr(false),
		Jurisdiction:   "burbank",
		DSCR:           fptr(1.45),
		AnnualCashFlow: fptr(24000),
		YearBuilt:      iptr(2015),
		PropertyType:   "sfr",
		NOIMarket:      49248,
		NOIDownside:    46000,
	})
	require.NoError(t, err)

	// 100*.15+85*.15+85*.10+80*.25+85*.10+85*.10+80*.15 = 85.25 -> grade A
	assert.Equal(t, 85.25, out.Score)
	assert.Equal(t, "A", out.Grade)
}

func TestHandler_Execute_HazardousRegulatedSubject(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		FloodHighRisk:  bptr(true),
		FireHazardZone: bptr(true),
		FaultZone:      bptr(true),
		RentControlled: bptr(true),
		Jurisdiction:   "la city",
		DSCR:           fptr(1.05),
		AnnualCashFlow: fptr(-5000),
		YearBuilt:      iptr(1925),
		PropertyType:   "commercial",
		NOIMarket:      40000,
		NOIDownside:    28000,
	})
	require.NoError(t, err)

	// hazards floored at 40; underwriting floored at 40 (80-25-20);
	// 40*.15+55*.15+70*.10+40*.25+55*.10+65*.10+60*.15 = 52.25 -> grade D
	assert.Equal(t, 52.25, out.Score)
	assert.Equal(t, "D", out.Grade)
	assert.Equal(t, 40.0, out.Components.Hazards)
	assert.Equal(t, 40.0, out.Components.Underwriting)
}

func TestHandler_Execute_ComponentScoring(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		check func(t *testing.T, c Components)
	}{
		{
			name:  "single hazard",
			input: &Input{FloodHighRisk: bptr(true)},
			check: func(t *testing.T, c Components) { assert.Equal(t, 80.0, c.Hazards) },
		},
		{
			name:  "near-miss dscr",
			input: &Input{DSCR: fptr(1.15)},
			check: func(t *testing.T, c Components) { assert.Equal(t, 65.0, c.Underwriting) },
		},
		{
			name:  "volatile income",
			input: &Input{NOIMarket: 50000, NOIDownside: 35000},
			check: func(t *testing.T, c Components) { assert.Equal(t, 60.0, c.IncomeVolatility) },
		},
		{
			name:  "pre-war building",
			input: &Input{YearBuilt: iptr(1930)},
			check: func(t *testing.T, c Components) { assert.Equal(t, 55.0, c.PropertyAge) },
		},
	}

	h := newHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			tt.check(t, out.Components)
		})
	}
}

// ==========================
// Invariant Tests
// ==========================

func TestHandler_Execute_ScoreWithinBounds(t *testing.T) {
	h := newHandler(t)

	inputs := []*Input{
		{},
		{FloodHighRisk: bptr(true), FireHazardZone: bptr(true), FaultZone: bptr(true),
			RentControlled: bptr(true), DSCR: fptr(0.5), AnnualCashFlow: fptr(-100000),
			YearBuilt: iptr(1900), PropertyType: "commercial", NOIMarket: 10000, NOIDownside: 0},
		{RentControlled: bptr(false), DSCR: fptr(3.0), YearBuilt: iptr(2020), PropertyType: "sfr"},
	}
	for _, input := range inputs {
		out, err := h.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.Score, 0.0)
		assert.LessOrEqual(t, out.Score, 100.0)
		assert.Contains(t, []string{"A", "B", "C", "D"}, out.Grade)
	}
}
