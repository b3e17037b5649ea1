package models

import "time"

// Ranking is one evaluator's verdict over the anonymized response set.
// A transport failure leaves ParsedOrder empty, IsValid false and ErrorMsg
// set; the evaluator still occupies its slot in the result.
type Ranking struct {
	ModelID     string                `json:"model_id"`
	ModelName   string                `json:"model_name,omitempty"`
	RawText     string                `json:"raw_text,omitempty"`
	ParsedOrder []string              `json:"parsed_order"`
	Confidence  map[string]Confidence `json:"confidence,omitempty"`
	Criteria    []string              `json:"criteria,omitempty"`
	IsValid     bool                  `json:"is_valid"`
	ErrorMsg    string                `json:"error_msg,omitempty"`
	DurationMs  int64                 `json:"duration_ms,omitempty"`
}

// Failed reports whether the ranking request itself failed in transport,
// as opposed to merely parsing poorly.
func (r *Ranking) Failed() bool {
	return r.ErrorMsg != ""
}

// Empty reports whether no labels at all were recovered from the reply.
func (r *Ranking) Empty() bool {
	return len(r.ParsedOrder) == 0
}

// AggregateEntry is one label's combined standing across all counted
// rankings. Entries are sorted ascending by WeightedRank (best first).
type AggregateEntry struct {
	Label          string             `json:"label"`
	ModelID        string             `json:"model_id"`
	ModelName      string             `json:"model_name,omitempty"`
	WeightedRank   float64            `json:"weighted_rank"`
	VotesCounted   int                `json:"votes_counted"`
	AvgConfidence  float64            `json:"avg_confidence"`
	TotalWeight    float64            `json:"total_weight"`
	ConfidenceDist map[Confidence]int `json:"confidence_distribution,omitempty"`
}

// PositionRange is the spread of positions a label received.
type PositionRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Disagreement describes one label whose placement evaluators could not
// agree on.
type Disagreement struct {
	Label     string        `json:"label"`
	ModelID   string        `json:"model_id,omitempty"`
	Variance  float64       `json:"variance"`
	StdDev    float64       `json:"std_dev"`
	Positions PositionRange `json:"positions"`
}

// LabelSpread holds the placement statistics of one label across the
// counted rankings. Positions are 1-based and appear in ranking order.
type LabelSpread struct {
	Mean      float64 `json:"mean"`
	Variance  float64 `json:"variance"`
	StdDev    float64 `json:"std_dev"`
	Positions []int   `json:"positions"`
}

// DisagreementReport quantifies how much the evaluators diverged.
// Consensus is 1.0 for perfect agreement, approaching 0 as rankings scatter.
type DisagreementReport struct {
	Consensus     float64                `json:"consensus"`
	PerLabel      map[string]LabelSpread `json:"per_label,omitempty"`
	Disagreements []Disagreement         `json:"disagreements,omitempty"`
	MostContested *Disagreement          `json:"most_contested,omitempty"`
	RankingsUsed  int                    `json:"rankings_used"`
}

// SynthesisResult is the chairman's final answer. When the synthesis request
// fails in transport, Content carries a description of the failure instead.
type SynthesisResult struct {
	ModelID    string `json:"model_id"`
	ModelName  string `json:"model_name,omitempty"`
	Content    string `json:"content"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// ValidationSummary counts how many rankings survived validation.
type ValidationSummary struct {
	Total       int      `json:"total"`
	Valid       int      `json:"valid"`
	Invalid     int      `json:"invalid"`
	InvalidFrom []string `json:"invalid_from,omitempty"`
}

// MajorityInvalid reports whether at least half of the rankings failed
// validation.
func (v ValidationSummary) MajorityInvalid() bool {
	return v.Total > 0 && v.Invalid*2 >= v.Total
}

// CouncilResult is the composite outcome of one council run.
type CouncilResult struct {
	Query        string              `json:"query"`
	Responses    []CandidateResponse `json:"responses"`
	LabelToModel map[string]string   `json:"label_to_model"`
	Rankings     []Ranking           `json:"rankings"`
	Aggregate    []AggregateEntry    `json:"aggregate_ranking"`
	Disagreement *DisagreementReport `json:"disagreement,omitempty"`
	Synthesis    *SynthesisResult    `json:"synthesis,omitempty"`
	Validation   ValidationSummary   `json:"validation"`
	Warnings     []string            `json:"warnings,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	DurationMs   int64               `json:"duration_ms"`
}

// Winner returns the best-placed aggregate entry, or nil when no label
// received any votes.
func (r *CouncilResult) Winner() *AggregateEntry {
	if len(r.Aggregate) == 0 {
		return nil
	}
	return &r.Aggregate[0]
}

// Consensus returns the consensus score, or 1.0 when no disagreement
// analysis was produced.
func (r *CouncilResult) ConsensusScore() float64 {
	if r.Disagreement == nil {
		return 1.0
	}
	return r.Disagreement.Consensus
}
