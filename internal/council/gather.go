package council

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/models"
)

// GatherResponses asks every council member the query concurrently and
// returns the answers in member order. A member that fails to answer is
// dropped and reported as a warning string; it simply leaves an empty seat
// at the council table.
//
// onProgress, when non-nil, receives an EventResponseStart per member before
// dispatch and an EventResponseComplete as each answer (or failure) lands.
// Complete events carry the member's model ID under Details["model_id"] and
// may fire from worker goroutines.
func GatherResponses(ctx context.Context, svc completion.Service, query string, members []models.ModelRef, workers int, timeout time.Duration, onProgress ProgressListener) ([]models.CandidateResponse, []string) {
	if workers <= 0 {
		workers = len(members)
	}

	notify := func(event ProgressEvent) {
		if onProgress != nil {
			onProgress(event)
		}
	}

	for i, member := range members {
		notify(ProgressEvent{
			EventType: EventResponseStart,
			Stage:     StageInit,
			ModelName: member.DisplayName(),
			Num:       i + 1,
			Total:     len(members),
		})
	}

	type slot struct {
		resp models.CandidateResponse
		err  error
	}
	slots := make([]slot, len(members))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, member := range members {
		g.Go(func() error {
			start := time.Now()
			resp, err := svc.Complete(ctx, &completion.Request{
				ModelID: member.ID,
				Messages: []models.Message{
					{Role: models.RoleUser, Content: query},
				},
				Timeout: timeout,
			})

			details := map[string]any{"model_id": member.ID}
			if err != nil {
				slog.Debug("gather request failed", "model", member.ID, "error", err)
				slots[i].err = err
				details["error"] = err.Error()
			} else {
				slots[i].resp = models.CandidateResponse{
					ModelID:   member.ID,
					ModelName: member.Name,
					Content:   resp.Content,
				}
			}

			notify(ProgressEvent{
				EventType:  EventResponseComplete,
				Stage:      StageInit,
				ModelName:  member.DisplayName(),
				Num:        i + 1,
				Total:      len(members),
				Valid:      err == nil,
				DurationMs: time.Since(start).Milliseconds(),
				Details:    details,
			})
			return nil
		})
	}
	_ = g.Wait()

	responses := make([]models.CandidateResponse, 0, len(members))
	var warnings []string
	for i, s := range slots {
		if s.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s did not answer: %v", members[i].DisplayName(), s.err))
			continue
		}
		responses = append(responses, s.resp)
	}
	return responses, warnings
}
