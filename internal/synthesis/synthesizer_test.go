package synthesis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	reply   string
	err     error
	lastReq *completion.Request
}

func (s *stubService) Initialize(context.Context) error { return nil }
func (s *stubService) Shutdown(context.Context) error   { return nil }

func (s *stubService) Complete(_ context.Context, req *completion.Request) (*completion.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &completion.Response{Content: s.reply, ModelID: req.ModelID, DurationMs: 12}, nil
}

func synthesisFixture() ([]models.CandidateResponse, []models.Ranking) {
	responses := []models.CandidateResponse{
		{ModelID: "m-a", ModelName: "Alpha", Content: "use a heap"},
		{ModelID: "m-b", Content: "sort and scan"},
	}
	rankings := []models.Ranking{
		{
			ModelID:     "m-a",
			ModelName:   "Alpha",
			RawText:     "B is simpler.\n\nFINAL RANKING:\n1. Response B (HIGH)\n2. Response A (LOW)\n",
			ParsedOrder: []string{"B", "A"},
			IsValid:     true,
		},
		{ModelID: "m-b", ErrorMsg: "connection reset"},
	}
	return responses, rankings
}

func TestSynthesize_ExplicitChairman(t *testing.T) {
	svc := &stubService{reply: "The heap approach wins."}
	responses, rankings := synthesisFixture()

	result, err := NewSynthesizer(svc, 0).Synthesize(context.Background(), "fastest top-k?", responses, rankings, "m-b")
	require.NoError(t, err)

	assert.Equal(t, "m-b", result.ModelID)
	assert.Equal(t, "The heap approach wins.", result.Content)
	assert.Equal(t, int64(12), result.DurationMs)
	assert.Equal(t, "m-b", svc.lastReq.ModelID)
}

func TestSynthesize_DefaultsToFirstResponseModel(t *testing.T) {
	svc := &stubService{reply: "final"}
	responses, rankings := synthesisFixture()

	result, err := NewSynthesizer(svc, 0).Synthesize(context.Background(), "q", responses, rankings, "")
	require.NoError(t, err)

	assert.Equal(t, "m-a", result.ModelID)
	assert.Equal(t, "Alpha", result.ModelName)
}

func TestSynthesize_TransportFailureRecovered(t *testing.T) {
	svc := &stubService{err: fmt.Errorf("dial tcp: timeout")}
	responses, rankings := synthesisFixture()

	result, err := NewSynthesizer(svc, 0).Synthesize(context.Background(), "q", responses, rankings, "m-a")
	require.NoError(t, err)

	assert.Contains(t, result.Content, "m-a")
	assert.Contains(t, result.Content, "dial tcp: timeout")
	assert.Zero(t, result.DurationMs)
}

func TestSynthesize_NoResponses(t *testing.T) {
	_, err := NewSynthesizer(&stubService{}, 0).Synthesize(context.Background(), "q", nil, nil, "")
	assert.Error(t, err)
}

func TestBuildSynthesisPrompt(t *testing.T) {
	responses, rankings := synthesisFixture()
	prompt := BuildSynthesisPrompt("fastest top-k?", responses, rankings)

	// Attributed by name, with ID fallback.
	assert.Contains(t, prompt, "### Answer from Alpha\nuse a heap")
	assert.Contains(t, prompt, "### Answer from m-b\nsort and scan")

	// Full raw review text, including the failed evaluator.
	assert.Contains(t, prompt, "### Review by Alpha\nB is simpler.")
	assert.Contains(t, prompt, "FINAL RANKING:")
	assert.Contains(t, prompt, "(review unavailable: connection reset)")

	// Question comes before the answers, answers before the reviews.
	require.Less(t, strings.Index(prompt, "## Question"), strings.Index(prompt, "## Candidate answers"))
	require.Less(t, strings.Index(prompt, "## Candidate answers"), strings.Index(prompt, "## Peer reviews"))
}

func TestBuildSynthesisPrompt_EmptyRanking(t *testing.T) {
	responses, _ := synthesisFixture()
	rankings := []models.Ranking{{ModelID: "m-a", ModelName: "Alpha"}}

	prompt := BuildSynthesisPrompt("q", responses, rankings)
	assert.Contains(t, prompt, "### Review by Alpha\n(no review produced)")
}
