// Package consensus combines peer rankings into a single weighted order and
// measures how much the evaluators disagreed while producing it.
package consensus

import (
	"sort"

	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/perfstore"
)

// Aggregate merges the given rankings into one weighted order over the
// labeled responses. Rankings that are invalid AND empty are skipped
// entirely; invalid but non-empty rankings still contribute partial credit.
// For each label the weighted rank is Σ(position·weight)/Σ(weight) over
// every mention, where weight = modelWeight · confidenceWeight under the
// given options. Labels nobody mentioned are absent from the output.
//
// The result is sorted ascending by weighted rank; ties keep label order.
// Aggregate is pure: it reads the store but mutates nothing.
func Aggregate(rankings []models.Ranking, labeled []models.LabeledResponse, store perfstore.Store, opts Options) []models.AggregateEntry {
	// Per-ranking model weights, computed once per evaluator.
	weights := make([]float64, len(rankings))
	for i, r := range rankings {
		if opts.WeightedAggregation {
			weights[i] = modelWeight(store, r.ModelID)
		} else {
			weights[i] = 1.0
		}
	}

	entries := make([]models.AggregateEntry, 0, len(labeled))
	for _, lr := range labeled {
		entry, counted := aggregateLabel(lr, rankings, weights, opts)
		if counted {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeightedRank < entries[j].WeightedRank
	})
	return entries
}

// aggregateLabel folds every mention of one label across the rankings.
// Returns counted=false when no usable ranking mentions the label.
func aggregateLabel(lr models.LabeledResponse, rankings []models.Ranking, weights []float64, opts Options) (models.AggregateEntry, bool) {
	var (
		weightedSum   float64
		totalWeight   float64
		confidenceSum float64
		votes         int
	)
	confidenceDist := make(map[models.Confidence]int)

	for i, r := range rankings {
		if !r.IsValid && r.Empty() {
			continue // fully unusable, nothing to credit
		}

		for pos, label := range r.ParsedOrder {
			if label != lr.Label {
				continue
			}

			conf := models.ConfidenceMedium
			if c, ok := r.Confidence[label]; ok {
				conf = c
			}

			w := weights[i]
			if opts.ConfidenceWeighting {
				w *= confidenceWeight(conf)
			}

			weightedSum += float64(pos+1) * w
			totalWeight += w
			confidenceSum += ConfidenceScore(conf)
			confidenceDist[conf]++
			votes++
		}
	}

	if votes == 0 || totalWeight == 0 {
		return models.AggregateEntry{}, false
	}

	return models.AggregateEntry{
		Label:          lr.Label,
		ModelID:        lr.Response.ModelID,
		ModelName:      lr.Response.ModelName,
		WeightedRank:   weightedSum / totalWeight,
		VotesCounted:   votes,
		AvgConfidence:  confidenceSum / float64(votes),
		TotalWeight:    totalWeight,
		ConfidenceDist: confidenceDist,
	}, true
}
