// internal/appraisal/risk-score/handler.go
package riskscore

import (
	"context"
	"math"
	"strings"

	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "risk-score"
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

// Execute synthesizes hazard, regulatory, underwriting, age, type and income
// volatility signals into one comparable score. Unknown signals score
// neutral, so a sparse input still produces a usable composite.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	c := Components{
		Hazards:          scoreHazards(input),
		RentControl:      scoreRentControl(input.RentControlled),
		Jurisdiction:     scoreJurisdiction(input.Jurisdiction),
		Underwriting:     scoreUnderwriting(input.DSCR, input.AnnualCashFlow),
		PropertyAge:      scorePropertyAge(input.YearBuilt),
		PropertyType:     scorePropertyType(input.PropertyType),
		IncomeVolatility: scoreIncomeVolatility(input.NOIMarket, input.NOIDownside),
	}

	w := h.config.Weights
	score := c.Hazards*w.Hazards +
		c.RentControl*w.RentControl +
		c.Jurisdiction*w.Jurisdiction +
		c.Underwriting*w.Underwriting +
		c.PropertyAge*w.PropertyAge +
		c.PropertyType*w.PropertyType +
		c.IncomeVolatility*w.IncomeVolatility

	out := &Output{
		Score:      math.Round(score*100) / 100,
		Components: c,
	}
	out.Grade, out.Interpretation = grade(out.Score)

	h.logger.Debug("risk scored", map[string]interface{}{
		"score": out.Score,
		"grade": out.Grade,
	})
	return out, nil
}

// scoreHazards penalizes each confirmed high-risk overlay 20 points, floored
// at 40. Unknown overlays are treated as neutral.
func scoreHazards(input *Input) float64 {
	penalty := 0.0
	for _, flag := range []*bool{input.FloodHighRisk, input.FireHazardZone, input.FaultZone} {
		if flag != nil && *flag {
			penalty += 20
		}
	}
	return math.Max(40, 100-penalty)
}

func scoreRentControl(applies *bool) float64 {
	if applies == nil {
		return 70
	}
	if *applies {
		return 55
	}
	return 85
}

func scoreJurisdiction(jurisdiction string) float64 {
	j := strings.ToLower(jurisdiction)
	switch {
	case strings.Contains(j, "la city"), strings.Contains(j, "los angeles"):
		return 70
	case strings.Contains(j, "la county"):
		return 80
	default:
		return 85
	}
}

func scoreUnderwriting(dscr, cashFlow *float64) float64 {
	score := 80.0
	if dscr != nil {
		switch {
		case *dscr < 1.1:
			score -= 25
		case *dscr < 1.20:
			score -= 15
		case *dscr < 1.30:
			score -= 5
		}
	}
	if cashFlow != nil && *cashFlow < 0 {
		score -= 20
	}
	return math.Max(40, math.Min(95, score))
}

func scorePropertyAge(yearBuilt *int) float64 {
	if yearBuilt == nil {
		return 75
	}
	switch y := *yearBuilt; {
	case y < 1940:
		return 55
	case y < 1978:
		return 65
	case y < 2000:
		return 75
	default:
		return 85
	}
}

func scorePropertyType(propertyType string) float64 {
	switch strings.ToLower(propertyType) {
	case "commercial", "mixed_use":
		return 65
	case "multifamily_5plus":
		return 75
	case "duplex", "triplex", "fourplex", "small_multifamily":
		return 80
	case "sfr", "condo", "townhome":
		return 85
	default:
		return 70
	}
}

func scoreIncomeVolatility(noiMarket, noiDownside float64) float64 {
	if noiMarket <= 0 {
		return 70
	}
	drop := (noiMarket - noiDownside) / noiMarket
	switch {
	case drop > 0.20:
		return 60
	case drop > 0.10:
		return 70
	default:
		return 80
	}
}

func grade(score float64) (string, string) {
	switch {
	case score >= 85:
		return "A", "Low-risk investment with strong fundamentals."
	case score >= 75:
		return "B", "Moderate risk; acceptable for most investors."
	case score >= 65:
		return "C", "Higher risk; proceed with caution."
	default:
		return "D", "Very high risk; deal likely unsuitable unless value-add upside is strong."
	}
}
