// Package perfstore persists per-model performance history used to weight
// evaluator votes. The council core only reads through the Store interface;
// it never reaches into storage directly.
package perfstore

import "time"

// ModelStats is the aggregate performance record for one model.
type ModelStats struct {
	ModelID         string    `json:"model_id"`
	AvgQualityScore *float64  `json:"avg_quality_score,omitempty"`
	ErrorRate       float64   `json:"error_rate"`
	TotalRuns       int       `json:"total_runs"`
	TotalErrors     int       `json:"total_errors"`
	QualityHistory  []float64 `json:"quality_history,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store exposes read access to model performance history.
type Store interface {
	// StatsFor returns the stats for a model, or ok=false when the model
	// has no recorded history.
	StatsFor(modelID string) (*ModelStats, bool)
}

// RecordingStore is a Store that also accepts updates.
type RecordingStore interface {
	Store

	// Update inserts or replaces a model's stats record.
	Update(stats *ModelStats) error
}

// NullStore is a Store with no history: every lookup misses, so every
// model gets the neutral weight.
type NullStore struct{}

// StatsFor always reports a miss.
func (NullStore) StatsFor(string) (*ModelStats, bool) { return nil, false }
