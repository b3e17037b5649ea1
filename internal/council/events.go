package council

// Stage is a phase of the council state machine.
type Stage string

// Stage constants, in run order. StageAborted is reachable only from
// StageInit: once ranking collection has begun the run always completes.
const (
	StageInit        Stage = "init"
	StageCollecting  Stage = "collecting_rankings"
	StageAggregating Stage = "aggregating"
	StageSynthesis   Stage = "synthesizing"
	StageDone        Stage = "done"
	StageAborted     Stage = "aborted"
)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventCouncilStart      EventType = "council_start"
	EventCouncilComplete   EventType = "council_complete"
	EventStageChange       EventType = "stage_change"
	EventResponseStart     EventType = "response_start"
	EventResponseComplete  EventType = "response_complete"
	EventRankingStart      EventType = "ranking_start"
	EventRankingComplete   EventType = "ranking_complete"
	EventSynthesisStart    EventType = "synthesis_start"
	EventSynthesisComplete EventType = "synthesis_complete"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Stage      Stage
	ModelName  string
	Num        int
	Total      int
	Valid      bool
	DurationMs int64
	Details    map[string]any
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)
