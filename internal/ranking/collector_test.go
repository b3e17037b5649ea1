package ranking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService returns a canned reply (or error) per model ID.
type scriptedService struct {
	replies map[string]string
	errs    map[string]error

	mu      sync.Mutex
	inUse   int
	maxSeen int
	prompts []string
}

func (s *scriptedService) Initialize(context.Context) error { return nil }
func (s *scriptedService) Shutdown(context.Context) error   { return nil }

func (s *scriptedService) Complete(_ context.Context, req *completion.Request) (*completion.Response, error) {
	s.mu.Lock()
	s.inUse++
	if s.inUse > s.maxSeen {
		s.maxSeen = s.inUse
	}
	s.prompts = append(s.prompts, req.Messages[len(req.Messages)-1].Content)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inUse--
		s.mu.Unlock()
	}()

	if err := s.errs[req.ModelID]; err != nil {
		return nil, err
	}
	return &completion.Response{Content: s.replies[req.ModelID], ModelID: req.ModelID, DurationMs: 5}, nil
}

func collectorFixture() []models.LabeledResponse {
	labeled, _ := AssignLabels([]models.CandidateResponse{
		{ModelID: "m-a", ModelName: "Model A", Content: "answer one"},
		{ModelID: "m-b", ModelName: "Model B", Content: "answer two"},
		{ModelID: "m-c", ModelName: "Model C", Content: "answer three"},
	})
	return labeled
}

func TestCollector_ValidVerdictsInInputOrder(t *testing.T) {
	svc := &scriptedService{replies: map[string]string{
		"m-a": "FINAL RANKING:\n1. Response B (HIGH)\n2. Response A (MEDIUM)\n3. Response C (LOW)\n",
		"m-b": "FINAL RANKING:\n1. Response B\n2. Response C\n3. Response A\n",
		"m-c": "FINAL RANKING:\n1. Response A (HIGH)\n2. Response B (HIGH)\n3. Response C (HIGH)\n",
	}}

	rankings := NewCollector(svc).Collect(context.Background(), "q", collectorFixture())
	require.Len(t, rankings, 3)

	assert.Equal(t, "m-a", rankings[0].ModelID)
	assert.Equal(t, "m-b", rankings[1].ModelID)
	assert.Equal(t, "m-c", rankings[2].ModelID)

	assert.Equal(t, []string{"B", "A", "C"}, rankings[0].ParsedOrder)
	assert.True(t, rankings[0].IsValid)
	assert.Equal(t, models.ConfidenceHigh, rankings[0].Confidence["B"])
	assert.Equal(t, int64(5), rankings[0].DurationMs)

	assert.Equal(t, []string{"B", "C", "A"}, rankings[1].ParsedOrder)
	assert.Equal(t, models.ConfidenceMedium, rankings[1].Confidence["C"])
	assert.True(t, rankings[2].IsValid)
}

func TestCollector_FailureIsolation(t *testing.T) {
	svc := &scriptedService{
		replies: map[string]string{
			"m-a": "FINAL RANKING:\n1. Response A\n2. Response B\n3. Response C\n",
			"m-c": "FINAL RANKING:\n1. Response C\n2. Response A\n3. Response B\n",
		},
		errs: map[string]error{"m-b": fmt.Errorf("rate limited")},
	}

	rankings := NewCollector(svc).Collect(context.Background(), "q", collectorFixture())
	require.Len(t, rankings, 3)

	assert.True(t, rankings[0].IsValid)
	assert.True(t, rankings[2].IsValid)

	failed := rankings[1]
	assert.False(t, failed.IsValid)
	assert.Equal(t, "rate limited", failed.ErrorMsg)
	assert.Empty(t, failed.ParsedOrder)
	assert.Equal(t, "m-b", failed.ModelID)
}

func TestCollector_IncompleteReplyMarkedInvalid(t *testing.T) {
	svc := &scriptedService{replies: map[string]string{
		"m-a": "FINAL RANKING:\n1. Response A\n2. Response B\n3. Response C\n",
		"m-b": "FINAL RANKING:\n1. Response B\n", // missing two labels
		"m-c": "Response A and Response A again", // duplicate after fallback
	}}

	rankings := NewCollector(svc).Collect(context.Background(), "q", collectorFixture())

	assert.True(t, rankings[0].IsValid)
	assert.False(t, rankings[1].IsValid)
	assert.Equal(t, []string{"B"}, rankings[1].ParsedOrder)
	assert.Empty(t, rankings[1].ErrorMsg)
	assert.False(t, rankings[2].IsValid)
	assert.Equal(t, []string{"A", "A"}, rankings[2].ParsedOrder)
}

func TestCollector_WorkerLimit(t *testing.T) {
	reply := "FINAL RANKING:\n1. Response A\n2. Response B\n3. Response C\n"
	svc := &scriptedService{replies: map[string]string{"m-a": reply, "m-b": reply, "m-c": reply}}

	NewCollector(svc, WithWorkers(1)).Collect(context.Background(), "q", collectorFixture())

	assert.Equal(t, 1, svc.maxSeen)
}

func TestCollector_EveryMemberSeesSamePrompt(t *testing.T) {
	reply := "FINAL RANKING:\n1. Response A\n2. Response B\n3. Response C\n"
	svc := &scriptedService{replies: map[string]string{"m-a": reply, "m-b": reply, "m-c": reply}}

	NewCollector(svc).Collect(context.Background(), "the question", collectorFixture())

	require.Len(t, svc.prompts, 3)
	for _, p := range svc.prompts {
		assert.Equal(t, svc.prompts[0], p)
		assert.Contains(t, p, "the question")
		assert.Contains(t, p, "## Response C\nanswer three")
	}
}

func TestCollector_RankingCallback(t *testing.T) {
	reply := "FINAL RANKING:\n1. Response A\n2. Response B\n3. Response C\n"
	svc := &scriptedService{replies: map[string]string{"m-a": reply, "m-b": reply, "m-c": reply}}

	var calls atomic.Int32
	c := NewCollector(svc, WithRankingCallback(func(r models.Ranking, num, total int) {
		calls.Add(1)
		assert.Equal(t, 3, total)
		assert.True(t, r.IsValid)
	}))
	c.Collect(context.Background(), "q", collectorFixture())

	assert.Equal(t, int32(3), calls.Load())
}

func TestCollector_StructuredContract(t *testing.T) {
	svc := &scriptedService{replies: map[string]string{
		"m-a": `Here is my verdict: {"ranking": [{"label": "C", "confidence": "HIGH"}, {"label": "A", "confidence": "LOW"}, {"label": "B", "confidence": "MEDIUM"}], "criteria": ["accuracy"]}`,
		// Non-conforming JSON degrades to the text tiers.
		"m-b": "FINAL RANKING:\n1. Response B (HIGH)\n2. Response A (HIGH)\n3. Response C (HIGH)\n",
		"m-c": `{"ranking": []}`,
	}}

	c := NewCollector(svc, WithStructuredContract(true))
	rankings := c.Collect(context.Background(), "q", collectorFixture())

	require.True(t, rankings[0].IsValid)
	assert.Equal(t, []string{"C", "A", "B"}, rankings[0].ParsedOrder)
	assert.Equal(t, models.ConfidenceHigh, rankings[0].Confidence["C"])
	assert.Equal(t, []string{"accuracy"}, rankings[0].Criteria)

	assert.True(t, rankings[1].IsValid)
	assert.Equal(t, []string{"B", "A", "C"}, rankings[1].ParsedOrder)

	assert.False(t, rankings[2].IsValid)
	assert.Empty(t, rankings[2].ParsedOrder)
}

func TestCollector_StructuredPromptRequested(t *testing.T) {
	svc := &scriptedService{replies: map[string]string{"m-a": "{}", "m-b": "{}", "m-c": "{}"}}

	NewCollector(svc, WithStructuredContract(true)).Collect(context.Background(), "q", collectorFixture())

	require.NotEmpty(t, svc.prompts)
	assert.True(t, strings.Contains(svc.prompts[0], `"ranking"`))
	assert.False(t, strings.Contains(svc.prompts[0], "FINAL RANKING:"))
}
