// pkg/ratebook/ratebook_test.go
package ratebook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-engine/internal/common/errors"
)

// ==========================
// Default Ratebook Tests
// ==========================

func TestDefault_Validates(t *testing.T) {
	rb := Default()
	assert.NoError(t, rb.Validate())
}

func TestDefault_GridIsComplete(t *testing.T) {
	rb := Default()
	for _, pt := range PropertyTypes {
		for _, sc := range SubmarketClasses {
			rate, ok := rb.BaseRate(pt, sc)
			assert.True(t, ok, "missing cell %s x %s", pt, sc)
			assert.Greater(t, rate, 0.0)
		}
	}
}

func TestDefault_KnownCells(t *testing.T) {
	rb := Default()

	rate, ok := rb.BaseRate("5+", "stable")
	require.True(t, ok)
	assert.InDelta(t, 0.0475, rate, 1e-9)

	rate, ok = rb.BaseRate("sfr", "prime")
	require.True(t, ok)
	assert.InDelta(t, 0.035, rate, 1e-9)

	_, ok = rb.BaseRate("castle", "stable")
	assert.False(t, ok)
}

// ==========================
// Validation Tests
// ==========================

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rb *Ratebook)
	}{
		{
			name:   "missing grid cell",
			mutate: func(rb *Ratebook) { delete(rb.CapRateGrid["retail"], "core") },
		},
		{
			name:   "missing property type",
			mutate: func(rb *Ratebook) { delete(rb.CapRateGrid, "office") },
		},
		{
			name:   "non-positive band",
			mutate: func(rb *Ratebook) { rb.CapRateBand = Band{Min: 0, Max: 0.12} },
		},
		{
			name:   "inverted band",
			mutate: func(rb *Ratebook) { rb.CapRateBand = Band{Min: 0.12, Max: 0.03} },
		},
		{
			name: "risk steps not monotone",
			mutate: func(rb *Ratebook) {
				rb.RiskAdjustments = []RiskStep{
					{Below: 50, Adjustment: 0.0020},
					{Below: 101, Adjustment: -0.0010},
				}
			},
		},
		{
			name:   "risk steps missing catch-all",
			mutate: func(rb *Ratebook) { rb.RiskAdjustments = []RiskStep{{Below: 50, Adjustment: 0}} },
		},
		{
			name: "confidence weights do not sum to one",
			mutate: func(rb *Ratebook) {
				rb.Confidence.Weights = ConfidenceWeights{Count: 0.5, Distance: 0.5, Spread: 0.5, Variance: 0.5}
			},
		},
		{
			name: "recommendation weights do not sum to one",
			mutate: func(rb *Ratebook) {
				rb.Recommendation.Weights = RecommendationWeights{CapRate: 1, DSCR: 1, SalesComp: 1, CashOnCash: 1}
			},
		},
		{
			name:   "unordered verdict thresholds",
			mutate: func(rb *Ratebook) { rb.Recommendation.BuyThreshold = 40 },
		},
		{
			name:   "vacancy default out of range",
			mutate: func(rb *Ratebook) { rb.IncomeDefaults.VacancyRate = 1.5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := Default()
			tt.mutate(rb)

			err := rb.Validate()
			require.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeConfigurationInvalid, stdErr.Code)
		})
	}
}

// ==========================
// Load Tests
// ==========================

func TestLoad_RoundTrip(t *testing.T) {
	rb := Default()
	data, err := json.Marshal(rb)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ratebook.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())

	rate, ok := loaded.BaseRate("2-4", "transitional")
	require.True(t, ok)
	assert.InDelta(t, 0.0475, rate, 1e-9)
	assert.Equal(t, rb.Version, loaded.Version)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
