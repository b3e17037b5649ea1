// Package analytics turns finished council runs into per-model performance
// history, closing the loop that makes weighted aggregation meaningful:
// models that place well gain weight in future councils.
package analytics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/perfstore"
)

// maxHistory bounds the per-model quality history kept in the store.
const maxHistory = 50

// Recorder folds council results into a performance store.
type Recorder struct {
	store perfstore.RecordingStore
}

// NewRecorder creates a Recorder writing to the given store.
func NewRecorder(store perfstore.RecordingStore) *Recorder {
	return &Recorder{store: store}
}

// Record updates every participating model's history from one council
// result: a quality score derived from its aggregate placement, and an
// error count from its evaluator performance. Models absent from the
// aggregate (no votes) only have their run and error counters advanced.
func (r *Recorder) Record(result *models.CouncilResult) error {
	if result == nil {
		return fmt.Errorf("analytics: nil result")
	}

	scores := qualityScores(result.Aggregate)
	failed := make(map[string]bool)
	for _, rk := range result.Rankings {
		if rk.Failed() {
			failed[rk.ModelID] = true
		}
	}

	now := time.Now().UTC()
	for _, resp := range result.Responses {
		stats, ok := r.store.StatsFor(resp.ModelID)
		if !ok {
			stats = &perfstore.ModelStats{ModelID: resp.ModelID}
		}

		stats.TotalRuns++
		if failed[resp.ModelID] {
			stats.TotalErrors++
		}
		stats.ErrorRate = float64(stats.TotalErrors) / float64(stats.TotalRuns)

		if score, scored := scores[resp.ModelID]; scored {
			stats.QualityHistory = append(stats.QualityHistory, score)
			if len(stats.QualityHistory) > maxHistory {
				stats.QualityHistory = stats.QualityHistory[len(stats.QualityHistory)-maxHistory:]
			}
			avg := mean(stats.QualityHistory)
			stats.AvgQualityScore = &avg
		}

		stats.UpdatedAt = now
		if err := r.store.Update(stats); err != nil {
			return fmt.Errorf("recording stats for %s: %w", resp.ModelID, err)
		}
		slog.Debug("recorded model stats", "model", resp.ModelID,
			"runs", stats.TotalRuns, "errors", stats.TotalErrors)
	}
	return nil
}

// qualityScores maps each ranked model to a 0-100 score by aggregate
// position: first place scores 100, last place 0, the rest linearly in
// between.
func qualityScores(aggregate []models.AggregateEntry) map[string]float64 {
	n := len(aggregate)
	scores := make(map[string]float64, n)
	if n < 2 {
		// A single-entry aggregate carries no placement signal.
		return scores
	}
	for i, entry := range aggregate {
		scores[entry.ModelID] = 100.0 * float64(n-(i+1)) / float64(n-1)
	}
	return scores
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
