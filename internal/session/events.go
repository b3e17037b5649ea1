// Package session records the raw event stream of a council run as NDJSON,
// one event per line, for later inspection and replay.
package session

import "time"

// Kind identifies the type of a session event.
type Kind string

// Kind constants
const (
	KindRunStart       Kind = "run_start"
	KindRunComplete    Kind = "run_complete"
	KindStageChange    Kind = "stage_change"
	KindResponse       Kind = "response"
	KindRankingStart   Kind = "ranking_start"
	KindRankingResult  Kind = "ranking_result"
	KindSynthesisStart Kind = "synthesis_start"
	KindSynthesisDone  Kind = "synthesis_done"
	KindWarning        Kind = "warning"
)

// Event is one entry in the session log.
type Event struct {
	Kind      Kind           `json:"kind"`
	Timestamp time.Time      `json:"timestamp"`
	ModelID   string         `json:"model_id,omitempty"`
	Label     string         `json:"label,omitempty"`
	Stage     string         `json:"stage,omitempty"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewEvent creates an event of the given kind stamped with the current time.
func NewEvent(kind Kind) Event {
	return Event{Kind: kind, Timestamp: time.Now().UTC()}
}
