// internal/appraisal/cap-rate/handler_test.go
package caprate

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

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_GridLookup(t *testing.T) {
	h := newHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		PropertyType:   "5+",
		SubmarketClass: "stable",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0475, out.BaseRate)
	assert.Zero(t, out.RiskAdjustment)
	assert.Zero(t, out.RentControlAdjustment)
	assert.Equal(t, 0.0475, out.CapRate)
	assert.False(t, out.Clamped)
}

func TestHandler_Execute_RiskAdjustmentSteps(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		wantAdj float64
	}{
		{"very low risk", 10, -0.0010},
		{"low risk", 30, -0.0005},
		{"moderate risk", 50, 0.0},
		{"elevated risk", 70, 0.0020},
		{"high risk", 90, 0.0075},
		{"boundary at 60", 60, 0.0020},
		{"max score", 100, 0.0075},
	}

	h := newHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{
				PropertyType:   "2-4",
				SubmarketClass: "core",
				RiskScore:      f(tt.score),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdj, out.RiskAdjustment)
			assert.InDelta(t, 0.0425+tt.wantAdj, out.CapRate, 1e-9)
		})
	}
}

func TestHandler_Execute_RentControlIncrement(t *testing.T) {
	h := newHandler(t)

	// sfr/prime base 3.5% is in the <=4% band, so the increment is +30 bps.
	out, err := h.Execute(context.Background(), &Input{
		PropertyType:   "sfr",
		SubmarketClass: "prime",
		RentControlled: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0030, out.RentControlAdjustment)
	assert.InDelta(t, 0.038, out.CapRate, 1e-9)

	// office/stable base 6.0% falls through to the top band, +50 bps.
	out, err = h.Execute(context.Background(), &Input{
		PropertyType:   "office",
		SubmarketClass: "stable",
		RentControlled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0050, out.RentControlAdjustment)
}

func TestHandler_Execute_ClampedToBand(t *testing.T) {
	rb := ratebook.Default()
	rb.CapRateGrid["sfr"]["prime"] = 0.025
	h := NewHandler(ConfigFromRatebook(rb), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		PropertyType:   "sfr",
		SubmarketClass: "prime",
		RiskScore:      f(10),
	})
	require.NoError(t, err)

	assert.True(t, out.Clamped)
	assert.Equal(t, 0.03, out.CapRate)
	// Raw adjustments stay visible even when the sum was clamped.
	assert.Equal(t, 0.025, out.BaseRate)
	assert.Equal(t, -0.0010, out.RiskAdjustment)
}

// ==========================
// Error Case Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode errors.ErrorCode
		field    string
	}{
		{
			name:     "missing property type",
			input:    &Input{SubmarketClass: "core"},
			wantCode: errors.ErrCodeMissingInput,
			field:    "propertyType",
		},
		{
			name:     "missing submarket",
			input:    &Input{PropertyType: "5+"},
			wantCode: errors.ErrCodeMissingInput,
			field:    "submarketClass",
		},
		{
			name:     "unknown property type",
			input:    &Input{PropertyType: "castle", SubmarketClass: "core"},
			wantCode: errors.ErrCodeInvalidRange,
			field:    "propertyType",
		},
		{
			name:     "unknown submarket",
			input:    &Input{PropertyType: "5+", SubmarketClass: "frontier"},
			wantCode: errors.ErrCodeInvalidRange,
			field:    "submarketClass",
		},
		{
			name:     "risk score out of range",
			input:    &Input{PropertyType: "5+", SubmarketClass: "core", RiskScore: f(120)},
			wantCode: errors.ErrCodeInvalidRange,
			field:    "riskScore",
		},
	}

	h := newHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.field, stdErr.Field)
			assert.Equal(t, Stage, stdErr.Component)
		})
	}
}

// ==========================
// Invariant Tests
// ==========================

func TestHandler_Execute_AlwaysWithinBand(t *testing.T) {
	h := newHandler(t)
	rb := ratebook.Default()

	for _, pt := range ratebook.PropertyTypes {
		for _, sc := range ratebook.SubmarketClasses {
			for score := 0.0; score <= 100; score += 5 {
				for _, rc := range []bool{false, true} {
					out, err := h.Execute(context.Background(), &Input{
						PropertyType:   pt,
						SubmarketClass: sc,
						RiskScore:      f(score),
						RentControlled: rc,
					})
					require.NoError(t, err)
					assert.GreaterOrEqual(t, out.CapRate, rb.CapRateBand.Min)
					assert.LessOrEqual(t, out.CapRate, rb.CapRateBand.Max)
				}
			}
		}
	}
}

func BenchmarkHandler_Execute(b *testing.B) {
	h := NewHandler(ConfigFromRatebook(ratebook.Default()), logger.NewNoOpLogger())
	score := 55.0
	input := &Input{
		PropertyType:   "5+",
		SubmarketClass: "stable",
		RiskScore:      &score,
		RentControlled: true,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(context.Background(), input)
	}
}
