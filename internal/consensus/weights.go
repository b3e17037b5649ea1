package consensus

import (
	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/perfstore"
)

// Neutral history values used when a model has no recorded performance.
// They put the model weight at exactly 1.0, so an unknown evaluator neither
// boosts nor drags the labels it votes on.
const (
	neutralQualityScore = 50.0
	neutralErrorRate    = 0.0
)

// Confidence weights applied per placement when confidence weighting is
// enabled. The same numeric mapping also feeds the unweighted
// AvgConfidence score.
const (
	highConfidenceWeight   = 1.0
	mediumConfidenceWeight = 0.7
	lowConfidenceWeight    = 0.4
)

// Options controls which weighting factors Aggregate applies.
type Options struct {
	// WeightedAggregation scales each evaluator's votes by its historical
	// quality and error rate from the performance store.
	WeightedAggregation bool

	// ConfidenceWeighting scales each placement by the evaluator's stated
	// confidence for that label.
	ConfidenceWeighting bool
}

// DefaultOptions enables both weighting factors.
func DefaultOptions() Options {
	return Options{
		WeightedAggregation: true,
		ConfidenceWeighting: true,
	}
}

// modelWeight computes an evaluator's vote weight from its performance
// history: 0.5 + (avgQuality/100)·(1 − errorRate). A model with no history
// gets the neutral weight 1.0; the effective range is roughly [0.5, 1.5].
func modelWeight(store perfstore.Store, modelID string) float64 {
	quality := neutralQualityScore
	errorRate := neutralErrorRate

	if store != nil {
		if stats, ok := store.StatsFor(modelID); ok && stats != nil {
			if stats.AvgQualityScore != nil {
				quality = *stats.AvgQualityScore
			}
			errorRate = stats.ErrorRate
		}
	}

	return 0.5 + (quality/100.0)*(1.0-errorRate)
}

// confidenceWeight maps a stated confidence to its vote multiplier.
// Anything unrecognized counts as MEDIUM.
func confidenceWeight(c models.Confidence) float64 {
	switch c {
	case models.ConfidenceHigh:
		return highConfidenceWeight
	case models.ConfidenceLow:
		return lowConfidenceWeight
	default:
		return mediumConfidenceWeight
	}
}

// ConfidenceScore is the numeric value of a confidence level, used for the
// unweighted average confidence reported per label.
func ConfidenceScore(c models.Confidence) float64 {
	return confidenceWeight(c)
}
