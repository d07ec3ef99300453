// pkg/ratebook/defaults.go
package ratebook

// Default returns the embedded calibrated ratebook. Grid values are LA-style
// midpoints; adjust per market through a Load() override file.
func Default() *Ratebook {
	return &Ratebook{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01",

		CapRateGrid: map[string]map[string]float64{
			"sfr": {
				"prime": 0.035, "core": 0.040, "stable": 0.0425, "transitional": 0.045, "distressed": 0.050,
			},
			"2-4": {
				"prime": 0.0375, "core": 0.0425, "stable": 0.045, "transitional": 0.0475, "distressed": 0.0525,
			},
			"5+": {
				"prime": 0.040, "core": 0.045, "stable": 0.0475, "transitional": 0.050, "distressed": 0.055,
			},
			"mixed_use": {
				"prime": 0.0425, "core": 0.0475, "stable": 0.050, "transitional": 0.0525, "distressed": 0.0575,
			},
			"retail": {
				"prime": 0.045, "core": 0.050, "stable": 0.0525, "transitional": 0.055, "distressed": 0.060,
			},
			"office": {
				"prime": 0.050, "core": 0.055, "stable": 0.060, "transitional": 0.065, "distressed": 0.070,
			},
			"industrial": {
				"prime": 0.040, "core": 0.045, "stable": 0.0475, "transitional": 0.050, "distressed": 0.055,
			},
			// Land is usually valued on a residual basis; a simple cap keeps
			// the grid complete.
			"land": {
				"prime": 0.020, "core": 0.025, "stable": 0.030, "transitional": 0.035, "distressed": 0.040,
			},
		},

		RiskAdjustments: []RiskStep{
			{Below: 20, Adjustment: -0.0010}, // -10 bps
			{Below: 40, Adjustment: -0.0005}, // -5 bps
			{Below: 60, Adjustment: 0.0000},
			{Below: 80, Adjustment: 0.0020}, // +20 bps
			{Below: 101, Adjustment: 0.0075}, // +75 bps
		},

		RentControlIncrements: []RentControlStep{
			{MaxBaseRate: 0.04, Adjustment: 0.0030}, // +30 bps
			{MaxBaseRate: 0.05, Adjustment: 0.0040}, // +40 bps
			{MaxBaseRate: 1.00, Adjustment: 0.0050}, // +50 bps
		},

		CapRateBand: Band{Min: 0.03, Max: 0.12},

		OutlierSigma: 2.0,

		Confidence: ConfidenceParams{
			Weights: ConfidenceWeights{
				Count:    0.35,
				Distance: 0.25,
				Spread:   0.20,
				Variance: 0.20,
			},
			CountSaturation:     8,
			MaxAvgDistanceMiles: 3.0,
			MaxSpreadPct:        0.45,
			MaxVariancePct:      0.25,
			HighThreshold:       4.0,
			MediumThreshold:     2.5,
		},

		Recommendation: RecommendationParams{
			Weights: RecommendationWeights{
				CapRate:    0.30,
				DSCR:       0.30,
				SalesComp:  0.25,
				CashOnCash: 0.15,
			},
			BuyThreshold:   75,
			WatchThreshold: 50,
			HardFailMargin: 0.15,
			ConfidenceSpan: 0.10,
			NeutralScore:   50,
			CapRateSpan:    0.0100,
			DSCRSpan:       0.50,
			AgreementSpan:  0.30,
			CashOnCashSpan: 0.12,
			Multipliers: ConfidenceMultipliers{
				Low:    0.90,
				Medium: 1.00,
				High:   1.10,
			},
		},

		RiskWeights: RiskWeights{
			Hazards:          0.15,
			RentControl:      0.15,
			Jurisdiction:     0.10,
			Underwriting:     0.25,
			PropertyAge:      0.10,
			PropertyType:     0.10,
			IncomeVolatility: 0.15,
		},

		IncomeDefaults: IncomeDefaults{
			VacancyRate:  0.05,
			ExpenseRatio: 0.35,
			DownsidePct:  0.10,
		},

		FinancingDefaults: FinancingDefaults{
			InterestRate:   0.0675,
			AmortMonths:    360,
			MinDSCR:        1.20,
			MaxLTV:         0.75,
			ClosingCostPct: 0.02,
		},

		TaxDefaults: TaxDefaults{
			BaseRate:       0.0100,
			LocalAddOnRate: 0.0025,
		},
	}
}
