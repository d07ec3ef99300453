// internal/appraisal/market-confidence/handler.go
package marketconfidence

import (
	"context"
	"math"

	"appraisal-engine/internal/common/logger"
)

const (
	Stage = "market-confidence"
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

// Execute scores the reliability of the comp-derived estimate. Four sub-scores
// in [0,1] (comp count, proximity, value spread, PPSF dispersion) are weighted
// and rescaled onto [1,5]. Zero comps pin the score to the floor.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CompCount <= 0 {
		h.logger.Warn("no comps to score, floor confidence", nil)
		return &Output{Score: 1.0, Level: LevelLow}, nil
	}

	countScore := math.Min(float64(input.CompCount)/h.config.CountSaturation, 1)
	distanceScore := inverseLinear(input.AvgDistanceMiles, h.config.MaxAvgDistanceMiles)
	spreadScore := inverseLinear(input.SpreadPct, h.config.MaxSpreadPct)

	variance := 0.0
	if input.PPSFMedian > 0 {
		variance = input.PPSFStdDev / input.PPSFMedian
	}
	varianceScore := inverseLinear(variance, h.config.MaxVariancePct)

	w := h.config.Weights
	weighted := countScore*w.Count + distanceScore*w.Distance + spreadScore*w.Spread + varianceScore*w.Variance

	out := &Output{
		Score:            round2(1 + 4*weighted),
		CountScore:       round4(countScore),
		DistanceScore:    round4(distanceScore),
		SpreadScore:      round4(spreadScore),
		VarianceScore:    round4(varianceScore),
		CompCount:        input.CompCount,
		AvgDistanceMiles: input.AvgDistanceMiles,
		SpreadPct:        input.SpreadPct,
	}
	out.Level = h.level(out.Score)

	h.logger.Debug("confidence scored", map[string]interface{}{
		"score": out.Score,
		"level": out.Level,
	})
	return out, nil
}

func (h *Handler) level(score float64) Level {
	switch {
	case score >= h.config.HighThreshold:
		return LevelHigh
	case score >= h.config.MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// inverseLinear maps 0 -> 1 and max -> 0, clamped.
func inverseLinear(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	s := 1 - v/max
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
