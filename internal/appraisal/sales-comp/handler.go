// internal/appraisal/sales-comp/handler.go
package salescomp

import (
	"context"
	"fmt"
	"math"
	"sort"

	"appraisal-engine/internal/common/errors"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/models"
)

const (
	Stage = "sales-comp"
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

// Execute derives a low/median/high value range for the subject from
// comparable sales. Comps without a positive price and square footage are
// skipped, and comps whose price per square foot sits further than the
// configured sigma from the median are discarded as outliers. Too few usable
// comps yields an insufficient result, never an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.SubjectSqft == nil {
		return nil, errors.NewMissingInputError(Stage, "subjectSqft")
	}
	if *input.SubjectSqft <= 0 {
		return nil, errors.NewInvalidRangeError(Stage, "subjectSqft", fmt.Sprintf("must be positive, got %v", *input.SubjectSqft))
	}

	usable := usableComps(input.Comps)
	if len(usable) < h.config.MinComps {
		h.logger.Warn("not enough usable comps", map[string]interface{}{
			"supplied": len(input.Comps),
			"usable":   len(usable),
		})
		return &Output{Insufficient: true}, nil
	}

	// Stable sort by price keeps equal-priced comps in request order so the
	// same request always produces the same range.
	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Price < usable[j].Price })

	ppsf := make([]float64, len(usable))
	for i, c := range usable {
		price := c.Price
		if c.Adjustment != nil {
			price += *c.Adjustment
		}
		ppsf[i] = price / c.Sqft
	}

	kept, discarded := h.filterOutliers(usable, ppsf)
	if len(kept) < h.config.MinComps {
		return &Output{Insufficient: true, DiscardedCount: discarded}, nil
	}

	keptPPSF := make([]float64, len(kept))
	totalDistance := 0.0
	for i, c := range kept {
		price := c.Price
		if c.Adjustment != nil {
			price += *c.Adjustment
		}
		keptPPSF[i] = price / c.Sqft
		totalDistance += c.DistanceMiles
	}
	sort.Float64s(keptPPSF)

	low := keptPPSF[0]
	high := keptPPSF[len(keptPPSF)-1]
	med := median(keptPPSF)

	out := &Output{
		Low:              round2(low * *input.SubjectSqft),
		Median:           round2(med * *input.SubjectSqft),
		High:             round2(high * *input.SubjectSqft),
		PPSFLow:          round2(low),
		PPSFMedian:       round2(med),
		PPSFHigh:         round2(high),
		PPSFStdDev:       round2(stdDev(keptPPSF)),
		AvgDistanceMiles: round2(totalDistance / float64(len(kept))),
		UsedCount:        len(kept),
		DiscardedCount:   discarded,
	}
	if out.Median > 0 {
		out.SpreadPct = round4((out.High - out.Low) / out.Median)
	}

	h.logger.Debug("sales comp range computed", map[string]interface{}{
		"used":      out.UsedCount,
		"discarded": out.DiscardedCount,
		"median":    out.Median,
	})
	return out, nil
}

// filterOutliers drops comps whose price per square foot is more than
// OutlierSigma standard deviations from the median. With fewer than three
// comps the standard deviation is too noisy to trust, so nothing is dropped.
func (h *Handler) filterOutliers(comps []models.SalesComp, ppsf []float64) ([]models.SalesComp, int) {
	if len(comps) < 3 {
		return comps, 0
	}

	sorted := make([]float64, len(ppsf))
	copy(sorted, ppsf)
	sort.Float64s(sorted)
	med := median(sorted)
	sigma := stdDev(sorted)
	if sigma == 0 {
		return comps, 0
	}

	kept := make([]models.SalesComp, 0, len(comps))
	for i, c := range comps {
		if math.Abs(ppsf[i]-med) <= h.config.OutlierSigma*sigma {
			kept = append(kept, c)
		}
	}
	return kept, len(comps) - len(kept)
}

func usableComps(comps []models.SalesComp) []models.SalesComp {
	usable := make([]models.SalesComp, 0, len(comps))
	for _, c := range comps {
		if c.Price > 0 && c.Sqft > 0 {
			usable = append(usable, c)
		}
	}
	return usable
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

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
