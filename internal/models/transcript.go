package models

import "time"

// CouncilTranscript is the per-run JSON file written to the transcript
// directory. It records everything needed to replay or audit a run: the
// query, every candidate answer, every raw ranking text, and the synthesis.
type CouncilTranscript struct {
	Query       string              `json:"query"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
	DurationMs  int64               `json:"duration_ms"`
	Members     []string            `json:"members"`
	Chairman    string              `json:"chairman,omitempty"`
	Responses   []CandidateResponse `json:"responses"`
	Labels      map[string]string   `json:"labels"`
	Rankings    []Ranking           `json:"rankings"`
	Aggregate   []AggregateEntry    `json:"aggregate_ranking,omitempty"`
	Consensus   float64             `json:"consensus"`
	FinalAnswer string              `json:"final_answer,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}
