// Package ranking anonymizes candidate responses, collects peer rankings
// from the council members, and parses the free-text verdicts leniently.
package ranking

import (
	"fmt"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

const labelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MaxResponses is the number of responses that can be anonymized in one
// round, bounded by the single-letter label alphabet.
const MaxResponses = len(labelAlphabet)

// LabelOverflowError indicates more candidate responses than available labels.
type LabelOverflowError struct {
	Count int
}

func (e *LabelOverflowError) Error() string {
	return fmt.Sprintf("cannot label %d responses: at most %d supported", e.Count, MaxResponses)
}

// AssignLabels pairs each response with a letter label in input order:
// the first response becomes "A", the second "B", and so on. Returns a
// *LabelOverflowError when more than 26 responses are given.
func AssignLabels(responses []models.CandidateResponse) ([]models.LabeledResponse, error) {
	if len(responses) > MaxResponses {
		return nil, &LabelOverflowError{Count: len(responses)}
	}

	labeled := make([]models.LabeledResponse, len(responses))
	for i, resp := range responses {
		labeled[i] = models.LabeledResponse{
			Label:    string(labelAlphabet[i]),
			Response: resp,
		}
	}
	return labeled, nil
}

// LabelMap returns the label → model ID mapping for a labeled set.
// Iterate the labeled slice itself when order matters.
func LabelMap(labeled []models.LabeledResponse) map[string]string {
	m := make(map[string]string, len(labeled))
	for _, lr := range labeled {
		m[lr.Label] = lr.Response.ModelID
	}
	return m
}
