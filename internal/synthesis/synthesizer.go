// Package synthesis produces the council's final answer: a designated
// chairman model reads the original responses and every evaluator verdict
// and writes the single best reply.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/models"
)

// Synthesizer asks the chairman model to merge the council's work into one
// final answer.
type Synthesizer struct {
	svc     completion.Service
	timeout time.Duration
}

// NewSynthesizer creates a Synthesizer backed by the given completion
// service. A zero timeout leaves timeout policy to the service.
func NewSynthesizer(svc completion.Service, timeout time.Duration) *Synthesizer {
	return &Synthesizer{svc: svc, timeout: timeout}
}

// Synthesize sends the synthesis prompt to the chairman and returns its
// answer. The chairman is chairmanID when set, otherwise the first
// response's model. A transport failure is recovered: the result's Content
// describes the failure and no error is returned, so a council run always
// completes with a synthesis section.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, responses []models.CandidateResponse, rankings []models.Ranking, chairmanID string) (*models.SynthesisResult, error) {
	if len(responses) == 0 {
		return nil, fmt.Errorf("synthesize: no responses to synthesize from")
	}

	chairman := models.ModelRef{ID: chairmanID}
	if chairman.ID == "" {
		chairman.ID = responses[0].ModelID
		chairman.Name = responses[0].ModelName
	} else {
		for _, r := range responses {
			if r.ModelID == chairman.ID {
				chairman.Name = r.ModelName
				break
			}
		}
	}

	result := &models.SynthesisResult{
		ModelID:   chairman.ID,
		ModelName: chairman.Name,
	}

	resp, err := s.svc.Complete(ctx, &completion.Request{
		ModelID: chairman.ID,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: chairmanSystemPrompt},
			{Role: models.RoleUser, Content: BuildSynthesisPrompt(query, responses, rankings)},
		},
		Timeout: s.timeout,
	})
	if err != nil {
		slog.Debug("synthesis request failed", "chairman", chairman.ID, "error", err)
		result.Content = fmt.Sprintf("Synthesis unavailable: the chairman model %q did not respond (%v). Refer to the aggregate ranking above.", chairman.ID, err)
		return result, nil
	}

	result.Content = resp.Content
	result.DurationMs = resp.DurationMs
	return result, nil
}
