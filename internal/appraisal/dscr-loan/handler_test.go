// internal/appraisal/dscr-loan/handler_test.go
package dscrloan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/pkg/ratebook"
)

// ==========================
// Test Helper Functions
// ==========================

func newHandler(t *testing.T) *Handler {
	return NewHandler(ConfigFromRatebook(ratebook.Default()), logger.NewTestLogger(t))
}

func f(v float64) *float64 { return &v }

func i(v int) *int { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_DSCRBinding(t *testing.T) {
	h := newHandler(t)

	// NOI $49,248, 1.20x target, 6.5% over 360 months, price $900,000 at
	// 75% LTV. Max payment = 49,248/12/1.20 = $3,420; the annuity-inverted
	// DSCR leg lands near $541k, well under the $675k LTV leg.
	out, err := h.Execute(context.Background(), &Input{
		NOI:          49248,
		TargetDSCR:   f(1.20),
		InterestRate: f(0.065),
		AmortMonths:  i(360),
		MaxLTV:       f(0.75),
		Price:        f(900000),
	})
	require.NoError(t, err)

	assert.Equal(t, 675000.0, out.LoanByLTV)
	assert.Less(t, out.LoanByDSCR, out.LoanByLTV)
	assert.Equal(t, out.LoanByDSCR, out.BindingLoan)

	// At the binding amount the payment matches the DSCR budget, so the
	// achieved DSCR is the target itself.
	assert.InDelta(t, 3420.0, out.MonthlyPI, 0.05)
	assert.InDelta(t, 1.20, out.AchievedDSCR, 0.0001)
	assert.True(t, out.MeetsThreshold)

	assert.InDelta(t, out.BindingLoan/900000, out.AchievedLTV, 0.0001)
	assert.InDelta(t, out.BindingLoan/0.75, out.MaxPurchasePrice, 0.01)
}

func TestHandler_Execute_LTVBinding(t *testing.T) {
	h := newHandler(t)

	// A cheap asset relative to its income: the LTV leg binds and the
	// achieved DSCR clears the target with room to spare.
	out, err := h.Execute(context.Background(), &Input{
		NOI:          49248,
		TargetDSCR:   f(1.20),
		InterestRate: f(0.065),
		AmortMonths:  i(360),
		MaxLTV:       f(0.75),
		Price:        f(400000),
	})
	require.NoError(t, err)

	assert.Equal(t, 300000.0, out.LoanByLTV)
	assert.Equal(t, 300000.0, out.BindingLoan)
	assert.Greater(t, out.AchievedDSCR, 1.20)
	assert.Equal(t, 0.75, out.AchievedLTV)
	assert.True(t, out.MeetsThreshold)
}

func TestHandler_Execute_NoPrice(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		NOI:          49248,
		TargetDSCR:   f(1.20),
		InterestRate: f(0.065),
		AmortMonths:  i(360),
	})
	require.NoError(t, err)

	assert.Zero(t, out.LoanByLTV)
	assert.Zero(t, out.AchievedLTV)
	assert.Equal(t, out.LoanByDSCR, out.BindingLoan)
	assert.Positive(t, out.MaxPurchasePrice)
}

func TestHandler_Execute_ZeroRateStraightLine(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		NOI:          12000,
		TargetDSCR:   f(1.0),
		InterestRate: f(0),
		AmortMonths:  i(120),
	})
	require.NoError(t, err)

	// $1,000/month budget over 120 months straight-line: $120,000.
	assert.Equal(t, 120000.0, out.LoanByDSCR)
	assert.InDelta(t, 1000.0, out.MonthlyPI, 0.01)
}

func TestHandler_Execute_NonPositiveNOI(t *testing.T) {
	h := newHandler(t)

	for _, noi := range []float64{0, -5000} {
		out, err := h.Execute(context.Background(), &Input{NOI: noi})
		require.NoError(t, err)

		assert.Zero(t, out.BindingLoan)
		assert.Zero(t, out.MonthlyPI)
		assert.False(t, out.MeetsThreshold)
	}
}

func TestHandler_Execute_DefaultsFromConfig(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{NOI: 49248})
	require.NoError(t, err)

	assert.Equal(t, 1.20, out.TargetDSCR)
	assert.Positive(t, out.LoanByDSCR)
}

// ==========================
// Error Case Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		field string
	}{
		{"zero target dscr", &Input{NOI: 49248, TargetDSCR: f(0)}, "targetDscr"},
		{"negative rate", &Input{NOI: 49248, InterestRate: f(-0.01)}, "interestRate"},
		{"zero term", &Input{NOI: 49248, AmortMonths: i(0)}, "amortMonths"},
		{"ltv above one", &Input{NOI: 49248, MaxLTV: f(1.2)}, "maxLtv"},
	}

	h := newHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidRange, stdErr.Code)
			assert.Equal(t, tt.field, stdErr.Field)
		})
	}
}

// ==========================
// Invariant Tests
// ==========================

func TestHandler_Execute_BindingNeverExceedsEitherLeg(t *testing.T) {
	h := newHandler(t)

	for _, price := range []float64{300000, 600000, 900000, 1500000} {
		out, err := h.Execute(context.Background(), &Input{
			NOI:   49248,
			Price: &price,
		})
		require.NoError(t, err)

		assert.LessOrEqual(t, out.BindingLoan, out.LoanByDSCR)
		assert.LessOrEqual(t, out.BindingLoan, out.LoanByLTV)
		if out.MeetsThreshold {
			assert.GreaterOrEqual(t, out.AchievedDSCR+1e-9, out.TargetDSCR)
		}
	}
}

func BenchmarkHandler_Execute(b *testing.B) {
	h := NewHandler(ConfigFromRatebook(ratebook.Default()), logger.NewNoOpLogger())
	price := 900000.0
	input := &Input{NOI: 49248, Price: &price}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(context.Background(), input)
	}
}
