package council

import "fmt"

// InsufficientResponsesError is returned when a council run is started with
// fewer than the minimum number of candidate responses.
type InsufficientResponsesError struct {
	Got int
}

func (e *InsufficientResponsesError) Error() string {
	return fmt.Sprintf("council needs at least %d responses, got %d", MinResponses, e.Got)
}

// ConsensusThresholdError indicates the run completed but its consensus
// score fell below the configured minimum.
type ConsensusThresholdError struct {
	Consensus float64
	Threshold float64
}

func (e *ConsensusThresholdError) Error() string {
	return fmt.Sprintf("consensus %.2f below required minimum %.2f", e.Consensus, e.Threshold)
}
