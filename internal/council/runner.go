// Package council orchestrates a full peer-review round: anonymize the
// candidate responses, collect rankings from every member, aggregate them,
// measure disagreement and synthesize the final answer.
package council

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/consensus"
	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/perfstore"
	"github.com/SSAM36/jhc-fnl/internal/ranking"
	"github.com/SSAM36/jhc-fnl/internal/session"
	"github.com/SSAM36/jhc-fnl/internal/synthesis"
)

// MinResponses is the smallest council that can run: with a single response
// there is nothing to rank.
const MinResponses = 2

// Runner orchestrates the execution of a council round.
type Runner struct {
	svc        completion.Service
	store      perfstore.Store
	sessionLog session.Logger

	chairman   string
	weighting  consensus.Options
	structured bool
	workers    int
	timeout    time.Duration

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithChairman sets the model that writes the final synthesized answer.
// Empty means the first response's model.
func WithChairman(modelID string) RunnerOption {
	return func(r *Runner) {
		r.chairman = modelID
	}
}

// WithPerformanceStore supplies historical model statistics for weighted
// aggregation. Without one, every model weighs the same.
func WithPerformanceStore(store perfstore.Store) RunnerOption {
	return func(r *Runner) {
		if store != nil {
			r.store = store
		}
	}
}

// WithWeighting overrides the aggregation weighting options.
func WithWeighting(opts consensus.Options) RunnerOption {
	return func(r *Runner) {
		r.weighting = opts
	}
}

// WithStructuredContract makes evaluators reply with the JSON verdict
// contract instead of free text.
func WithStructuredContract(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.structured = enabled
	}
}

// WithWorkers sets the concurrency limit for ranking requests.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRequestTimeout sets the per-request timeout for ranking and synthesis
// requests.
func WithRequestTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithSessionLogger records the raw event stream of the run.
func WithSessionLogger(logger session.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.sessionLog = logger
		}
	}
}

// NewRunner creates a council runner backed by the given completion service.
func NewRunner(svc completion.Service, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:        svc,
		store:      perfstore.NullStore{},
		sessionLog: session.NopLogger{},
		weighting:  consensus.DefaultOptions(),
		workers:    ranking.DefaultWorkers,
		listeners:  []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func (r *Runner) enterStage(stage Stage) {
	r.notifyProgress(ProgressEvent{EventType: EventStageChange, Stage: stage})

	ev := session.NewEvent(session.KindStageChange)
	ev.Stage = string(stage)
	r.logSession(ev)
}

func (r *Runner) logSession(ev session.Event) {
	if err := r.sessionLog.Log(ev); err != nil {
		// A broken session log never fails the run.
		return
	}
}

// Run executes one full council round over the given candidate responses
// and returns the composite result. Individual evaluator failures are
// recorded in the result; only structural problems (too few responses, more
// responses than labels) abort the run.
func (r *Runner) Run(ctx context.Context, query string, responses []models.CandidateResponse) (*models.CouncilResult, error) {
	startTime := time.Now()

	if len(responses) < MinResponses {
		r.enterStage(StageAborted)
		return nil, &InsufficientResponsesError{Got: len(responses)}
	}

	labeled, err := ranking.AssignLabels(responses)
	if err != nil {
		r.enterStage(StageAborted)
		return nil, fmt.Errorf("labeling responses: %w", err)
	}

	r.notifyProgress(ProgressEvent{EventType: EventCouncilStart, Total: len(responses)})
	startEv := session.NewEvent(session.KindRunStart)
	startEv.Message = query
	startEv.Details = map[string]any{"responses": len(responses)}
	r.logSession(startEv)

	result := &models.CouncilResult{
		Query:        query,
		Responses:    responses,
		LabelToModel: ranking.LabelMap(labeled),
		StartedAt:    startTime,
	}

	// Stage: collect rankings from every member.
	r.enterStage(StageCollecting)
	result.Rankings = r.collectRankings(ctx, query, labeled)

	valid := make([]models.Ranking, 0, len(result.Rankings))
	for _, rk := range result.Rankings {
		if rk.IsValid {
			valid = append(valid, rk)
		} else {
			result.Validation.InvalidFrom = append(result.Validation.InvalidFrom, rk.ModelID)
		}
	}
	result.Validation.Total = len(result.Rankings)
	result.Validation.Valid = len(valid)
	result.Validation.Invalid = len(result.Rankings) - len(valid)

	if result.Validation.MajorityInvalid() {
		warning := fmt.Sprintf("%d of %d rankings failed validation; aggregate is based on limited data",
			result.Validation.Invalid, result.Validation.Total)
		result.Warnings = append(result.Warnings, warning)

		warnEv := session.NewEvent(session.KindWarning)
		warnEv.Message = warning
		r.logSession(warnEv)
	}

	// Stage: aggregation and disagreement analysis, concurrently. Both
	// prefer the valid rankings but fall back to the full set when every
	// ranking failed validation, so the result is never empty-handed.
	r.enterStage(StageAggregating)
	counted := valid
	if len(counted) == 0 {
		counted = result.Rankings
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Aggregate = consensus.Aggregate(counted, labeled, r.store, r.weighting)
	}()
	go func() {
		defer wg.Done()
		result.Disagreement = consensus.Analyze(counted, labeled)
	}()
	wg.Wait()

	// Stage: synthesis. The chairman sees every ranking, valid or not; a
	// malformed review can still contain useful prose.
	r.enterStage(StageSynthesis)
	result.Synthesis = r.synthesize(ctx, query, responses, result.Rankings)

	r.enterStage(StageDone)
	result.DurationMs = time.Since(startTime).Milliseconds()

	r.notifyProgress(ProgressEvent{
		EventType:  EventCouncilComplete,
		DurationMs: result.DurationMs,
	})
	doneEv := session.NewEvent(session.KindRunComplete)
	doneEv.Details = map[string]any{
		"duration_ms": result.DurationMs,
		"valid":       result.Validation.Valid,
		"invalid":     result.Validation.Invalid,
	}
	r.logSession(doneEv)

	return result, nil
}

func (r *Runner) collectRankings(ctx context.Context, query string, labeled []models.LabeledResponse) []models.Ranking {
	for i, lr := range labeled {
		r.notifyProgress(ProgressEvent{
			EventType: EventRankingStart,
			ModelName: displayName(lr.Response),
			Num:       i + 1,
			Total:     len(labeled),
		})

		ev := session.NewEvent(session.KindRankingStart)
		ev.ModelID = lr.Response.ModelID
		ev.Label = lr.Label
		r.logSession(ev)
	}

	collector := ranking.NewCollector(r.svc,
		ranking.WithWorkers(r.workers),
		ranking.WithStructuredContract(r.structured),
		ranking.WithRequestTimeout(r.timeout),
		ranking.WithRankingCallback(func(rk models.Ranking, num, total int) {
			r.notifyProgress(ProgressEvent{
				EventType:  EventRankingComplete,
				ModelName:  rk.ModelName,
				Num:        num,
				Total:      total,
				Valid:      rk.IsValid,
				DurationMs: rk.DurationMs,
			})

			ev := session.NewEvent(session.KindRankingResult)
			ev.ModelID = rk.ModelID
			ev.Details = map[string]any{
				"valid": rk.IsValid,
				"order": rk.ParsedOrder,
			}
			if rk.ErrorMsg != "" {
				ev.Details["error"] = rk.ErrorMsg
			}
			r.logSession(ev)
		}),
	)

	return collector.Collect(ctx, query, labeled)
}

func (r *Runner) synthesize(ctx context.Context, query string, responses []models.CandidateResponse, rankings []models.Ranking) *models.SynthesisResult {
	r.notifyProgress(ProgressEvent{EventType: EventSynthesisStart, ModelName: r.chairman})
	r.logSession(session.NewEvent(session.KindSynthesisStart))

	synth, err := synthesis.NewSynthesizer(r.svc, r.timeout).Synthesize(ctx, query, responses, rankings, r.chairman)
	if err != nil {
		// Synthesize only errors on empty input, which Run rules out; keep
		// the run alive regardless.
		synth = &models.SynthesisResult{
			ModelID: r.chairman,
			Content: fmt.Sprintf("Synthesis unavailable: %v", err),
		}
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventSynthesisComplete,
		ModelName:  synth.ModelID,
		DurationMs: synth.DurationMs,
	})
	ev := session.NewEvent(session.KindSynthesisDone)
	ev.ModelID = synth.ModelID
	ev.Details = map[string]any{"duration_ms": synth.DurationMs}
	r.logSession(ev)

	return synth
}

func displayName(resp models.CandidateResponse) string {
	if resp.ModelName != "" {
		return resp.ModelName
	}
	return resp.ModelID
}
