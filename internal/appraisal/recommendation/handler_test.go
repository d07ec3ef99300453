// internal/appraisal/recommendation/handler_test.go
package recommendation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketconfidence "appraisal-engine/internal/appraisal/market-confidence"
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

// strongDeal clears every component comfortably.
func strongDeal() *Input {
	return &Input{
		ImpliedCapRate:  f(0.065),
		BenchmarkRate:   0.0475,
		AchievedDSCR:    1.45,
		TargetDSCR:      1.20,
		MeetsThreshold:  true,
		IncomeValue:     900000,
		CompValue:       f(910000),
		ConfidenceLevel: marketconfidence.LevelHigh,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_StrongDealIsBuy(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), strongDeal())
	require.NoError(t, err)

	// Implied 6.50% vs 4.75% saturates the cap-rate component; DSCR margin
	// +0.25 over a 0.50 span scores 75; a 1.1% divergence scores 96. Base
	// = (100*0.30 + 75*0.30 + 96.34*0.25) / 0.85 = 90.2, lifted 10% by
	// high confidence and clamped to 100.
	assert.Equal(t, VerdictBuy, out.Verdict)
	assert.Equal(t, 100.0, out.CapRateScore)
	assert.Equal(t, 75.0, out.DSCRScore)
	assert.Greater(t, out.SalesCompScore, 95.0)
	assert.Equal(t, 1.10, out.ConfidenceMultiplier)
	assert.Greater(t, out.FinalScore, 75.0)
	assert.False(t, out.HardFail)
	assert.Len(t, out.Reasoning, 4)
}

func TestHandler_Execute_HardFailCapsAtWatch(t *testing.T) {
	h := newHandler(t)

	input := strongDeal()
	// 0.90x vs a 1.20x target is below the 1.02x hard-fail line.
	input.AchievedDSCR = 0.90
	input.MeetsThreshold = false

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, out.HardFail)
	assert.NotEqual(t, VerdictBuy, out.Verdict)
	assert.Contains(t, out.Reasoning[1], "capped at WATCH")
}

func TestHandler_Execute_NarrowMissIsNotHardFail(t *testing.T) {
	h := newHandler(t)

	input := strongDeal()
	// 1.15x misses 1.20x but stays above the 1.02x hard-fail line.
	input.AchievedDSCR = 1.15
	input.MeetsThreshold = false

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, out.HardFail)
	assert.Contains(t, out.Reasoning[1], "falls short")
}

func TestHandler_Execute_InsufficientCompsNeutral(t *testing.T) {
	h := newHandler(t)

	input := strongDeal()
	input.CompValue = nil
	input.ConfidenceLevel = marketconfidence.LevelLow

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 50.0, out.SalesCompScore)
	assert.Equal(t, 0.90, out.ConfidenceMultiplier)
	assert.Contains(t, out.Reasoning[2], "held neutral")
}

func TestHandler_Execute_NoPriceNeutralCapRate(t *testing.T) {
	h := newHandler(t)

	input := strongDeal()
	input.ImpliedCapRate = nil

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 50.0, out.CapRateScore)
	assert.Contains(t, out.Reasoning[0], "held neutral")
}

func TestHandler_Execute_CashOnCashIncluded(t *testing.T) {
	h := newHandler(t)

	withCoC := strongDeal()
	withCoC.CashOnCashReturn = f(0.10)

	out, err := h.Execute(context.Background(), withCoC)
	require.NoError(t, err)

	require.NotNil(t, out.CashOnCashScore)
	// 10% over a 12% span: 83.33.
	assert.InDelta(t, 83.33, *out.CashOnCashScore, 0.01)
	assert.Len(t, out.Reasoning, 5)

	without, err := h.Execute(context.Background(), strongDeal())
	require.NoError(t, err)
	assert.Nil(t, without.CashOnCashScore)
}

func TestHandler_Execute_WeakDealIsPass(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		ImpliedCapRate:  f(0.035),
		BenchmarkRate:   0.0475,
		AchievedDSCR:    0.70,
		TargetDSCR:      1.20,
		IncomeValue:     500000,
		CompValue:       f(900000),
		ConfidenceLevel: marketconfidence.LevelLow,
	})
	require.NoError(t, err)

	assert.Equal(t, VerdictPass, out.Verdict)
	assert.Zero(t, out.DSCRScore)
	assert.True(t, out.HardFail)
}

// ==========================
// Invariant Tests
// ==========================

func TestHandler_Execute_Idempotent(t *testing.T) {
	h := newHandler(t)

	first, err := h.Execute(context.Background(), strongDeal())
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), strongDeal())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHandler_Execute_ScoreAlwaysWithinBounds(t *testing.T) {
	h := newHandler(t)

	inputs := []*Input{
		strongDeal(),
		{TargetDSCR: 1.20, ConfidenceLevel: marketconfidence.LevelLow},
		{ImpliedCapRate: f(0.20), BenchmarkRate: 0.03, AchievedDSCR: 3.0, TargetDSCR: 1.0,
			MeetsThreshold: true, IncomeValue: 1, CompValue: f(1), ConfidenceLevel: marketconfidence.LevelHigh},
	}
	for _, input := range inputs {
		out, err := h.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, out.FinalScore, 0.0)
		assert.LessOrEqual(t, out.FinalScore, 100.0)
		assert.GreaterOrEqual(t, out.BaseScore, 0.0)
		assert.LessOrEqual(t, out.BaseScore, 100.0)
	}
}

func BenchmarkHandler_Execute(b *testing.B) {
	h := NewHandler(ConfigFromRatebook(ratebook.Default()), logger.NewNoOpLogger())
	input := strongDeal()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(context.Background(), input)
	}
}
