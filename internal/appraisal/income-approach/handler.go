// internal/appraisal/income-approach/handler.go
package incomeapproach

import (
	"context"
	"fmt"
	"math"
	"sort"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "income-approach"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": Stage}),
	}
}

// Execute converts rent, vacancy and expense inputs into current and
// stabilized NOI. Pure computation, no side effects.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.NumUnits <= 0 {
		return nil, errors.NewMissingInputError(Stage, "numUnits")
	}

	rent, source, err := h.resolveRent(input)
	if err != nil {
		return nil, err
	}

	vacancy := h.config.DefaultVacancyRate
	if input.VacancyRate != nil {
		vacancy = *input.VacancyRate
	}
	if vacancy < 0 || vacancy > 1 {
		return nil, errors.NewInvalidRangeError(Stage, "vacancyRate", fmt.Sprintf("must be within [0,1], got %v", vacancy))
	}

	expenseRatio := h.config.DefaultExpenseRatio
	if input.ExpenseRatio != nil {
		expenseRatio = *input.ExpenseRatio
	}
	if expenseRatio < 0 || expenseRatio > 1 {
		return nil, errors.NewInvalidRangeError(Stage, "expenseRatio", fmt.Sprintf("must be within [0,1], got %v", expenseRatio))
	}

	reserveRate := 0.0
	if input.ReserveRate != nil {
		reserveRate = *input.ReserveRate
	}
	if reserveRate < 0 || reserveRate > 1 {
		return nil, errors.NewInvalidRangeError(Stage, "reserveRate", fmt.Sprintf("must be within [0,1], got %v", reserveRate))
	}

	gpi, egi, opex, reserves, noi := h.compute(rent, input.NumUnits, vacancy, expenseRatio, reserveRate, input.ItemizedExpenses)

	// Stabilized pass repeats the computation with the override assumptions;
	// without overrides, stabilized equals current.
	stabilizedNOI := noi
	if input.StabilizedRent != nil || input.StabilizedVacancy != nil {
		stabRent := rent
		if input.StabilizedRent != nil {
			stabRent = *input.StabilizedRent
		}
		stabVacancy := vacancy
		if input.StabilizedVacancy != nil {
			stabVacancy = *input.StabilizedVacancy
		}
		if stabVacancy < 0 || stabVacancy > 1 {
			return nil, errors.NewInvalidRangeError(Stage, "stabilizedVacancy", fmt.Sprintf("must be within [0,1], got %v", stabVacancy))
		}
		_, _, _, _, stabilizedNOI = h.compute(stabRent, input.NumUnits, stabVacancy, expenseRatio, reserveRate, input.ItemizedExpenses)
	}

	h.logger.Debug("income approach computed", map[string]interface{}{
		"rentSource": source,
		"gpi":        gpi,
		"noi":        noi,
	})

	return &Output{
		MarketRent:    rent,
		RentSource:    source,
		GPI:           gpi,
		VacancyLoss:   roundCurrency(gpi - egi),
		EGI:           egi,
		OPEX:          opex,
		Reserves:      reserves,
		NOI:           noi,
		StabilizedNOI: stabilizedNOI,
	}, nil
}

// resolveRent prefers the supplied market rent and falls back to the median of
// the in-request rent comps.
func (h *Handler) resolveRent(input *Input) (float64, string, error) {
	if input.MarketRent != nil {
		if *input.MarketRent < 0 {
			return 0, "", errors.NewInvalidRangeError(Stage, "marketRent", "must be non-negative")
		}
		return *input.MarketRent, "supplied", nil
	}

	if len(input.CompRents) == 0 {
		return 0, "", errors.NewMissingInputError(Stage, "marketRent")
	}

	rents := make([]float64, len(input.CompRents))
	copy(rents, input.CompRents)
	sort.Float64s(rents)
	return median(rents), "rent-comps", nil
}

func (h *Handler) compute(rent float64, units int, vacancy, expenseRatio, reserveRate float64, itemized *float64) (gpi, egi, opex, reserves, noi float64) {
	gpi = roundCurrency(rent * 12 * float64(units))
	egi = roundCurrency(gpi * (1 - vacancy))
	if itemized != nil {
		opex = roundCurrency(*itemized)
	} else {
		opex = roundCurrency(egi * expenseRatio)
	}
	reserves = roundCurrency(egi * reserveRate)
	// NOI may be negative for loss-making properties and is never clamped.
	noi = roundCurrency(egi - opex - reserves)
	return
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// roundCurrency keeps results at cent precision so EGI <= GPI and
// NOI = EGI - OPEX hold without floating drift.
func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
