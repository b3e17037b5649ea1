package ranking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/models"
)

// DefaultWorkers bounds how many ranking requests are in flight at once.
const DefaultWorkers = 4

// Collector fans one evaluation request out to every council member and
// gathers the parsed verdicts. Every member sees the same prompt with the
// full anonymized response set; a member ranking a set that contains its own
// answer is allowed.
type Collector struct {
	svc        completion.Service
	workers    int
	structured bool
	timeout    time.Duration

	// onRanking, when set, is called as each individual ranking settles.
	onRanking func(r models.Ranking, num, total int)
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithWorkers sets the concurrency limit for ranking requests.
func WithWorkers(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithStructuredContract makes the collector request a JSON verdict and
// validate it against the ranking schema, falling back to the lenient text
// parser whenever the reply does not conform.
func WithStructuredContract(enabled bool) CollectorOption {
	return func(c *Collector) {
		c.structured = enabled
	}
}

// WithRequestTimeout sets the per-request timeout passed to the completion
// service. Zero leaves timeout policy to the service.
func WithRequestTimeout(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.timeout = d
	}
}

// WithRankingCallback registers a callback invoked once per settled ranking,
// from the goroutine that produced it.
func WithRankingCallback(fn func(r models.Ranking, num, total int)) CollectorOption {
	return func(c *Collector) {
		c.onRanking = fn
	}
}

// NewCollector creates a Collector backed by the given completion service.
func NewCollector(svc completion.Service, opts ...CollectorOption) *Collector {
	c := &Collector{
		svc:     svc,
		workers: DefaultWorkers,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Collect asks every labeled response's model to rank the full anonymized
// set. All requests run concurrently and the call returns only after every
// one settles: a transport failure is recorded in that evaluator's slot as
// an invalid ranking and never aborts the others.
//
// The returned slice has one entry per labeled response, in input order.
func (c *Collector) Collect(ctx context.Context, query string, labeled []models.LabeledResponse) []models.Ranking {
	prompt := BuildEvaluationPrompt(query, labeled)
	if c.structured {
		prompt = BuildStructuredEvaluationPrompt(query, labeled)
	}

	rankings := make([]models.Ranking, len(labeled))
	semaphore := make(chan struct{}, c.workers)

	var wg sync.WaitGroup
	for i, lr := range labeled {
		wg.Add(1)
		go func(idx int, member models.CandidateResponse) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rankings[idx] = c.rankOnce(ctx, member, prompt, len(labeled))
			if c.onRanking != nil {
				c.onRanking(rankings[idx], idx+1, len(labeled))
			}
		}(i, lr.Response)
	}
	wg.Wait()

	return rankings
}

// rankOnce sends one evaluation request and parses the reply. Errors are
// downgraded into the returned ranking, never propagated.
func (c *Collector) rankOnce(ctx context.Context, member models.CandidateResponse, prompt string, expected int) models.Ranking {
	ranking := models.Ranking{
		ModelID:   member.ModelID,
		ModelName: member.ModelName,
	}

	resp, err := c.svc.Complete(ctx, &completion.Request{
		ModelID: member.ModelID,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: EvaluatorSystemPrompt},
			{Role: models.RoleUser, Content: prompt},
		},
		Timeout: c.timeout,
	})
	if err != nil {
		slog.Debug("ranking request failed", "model", member.ModelID, "error", err)
		ranking.ErrorMsg = err.Error()
		return ranking
	}

	parsed := c.parseReply(resp.Content)

	ranking.RawText = resp.Content
	ranking.ParsedOrder = parsed.Order
	ranking.Confidence = parsed.Confidence
	ranking.Criteria = parsed.Criteria
	ranking.IsValid = Validate(parsed.Order, expected)
	ranking.DurationMs = resp.DurationMs
	return ranking
}

func (c *Collector) parseReply(text string) ParsedRanking {
	if c.structured {
		if parsed, err := ParseStructured(text); err == nil {
			return parsed
		}
		// Malformed JSON degrades to the lenient text tiers.
	}
	return Parse(text)
}
