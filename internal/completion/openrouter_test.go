package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content, finishReason string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q},"finish_reason":%q}]}`, content, finishReason)
}

func newOpenRouterForTest(t *testing.T, handler http.HandlerFunc) *OpenRouterService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("TEST_OPENROUTER_KEY", "sk-test")
	svc := NewOpenRouterService(OpenRouterConfig{
		BaseURL:   server.URL,
		APIKeyEnv: "TEST_OPENROUTER_KEY",
		MaxTokens: 100,
	})
	require.NoError(t, svc.Initialize(context.Background()))
	return svc
}

func TestOpenRouter_Complete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	svc := newOpenRouterForTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, chatReply("the answer", "stop"))
	})

	resp, err := svc.Complete(context.Background(), &Request{
		ModelID: "openai/gpt-4o",
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: "be brief"},
			{Role: models.RoleUser, Content: "why?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "the answer", resp.Content)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "openai/gpt-4o", gotReq.Model)
	assert.Len(t, gotReq.Messages, 2)
	assert.Equal(t, 100, gotReq.MaxTokens)
}

func TestOpenRouter_RetriesTruncatedReplies(t *testing.T) {
	var budgets []int

	svc := newOpenRouterForTest(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		budgets = append(budgets, req.MaxTokens)

		if len(budgets) < 3 {
			fmt.Fprint(w, chatReply("partial...", "length"))
			return
		}
		fmt.Fprint(w, chatReply("complete answer", "stop"))
	})

	resp, err := svc.Complete(context.Background(), &Request{
		ModelID:  "openai/gpt-4o",
		Messages: []models.Message{{Role: models.RoleUser, Content: "long one"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "complete answer", resp.Content)
	// Budget doubles on every truncated attempt.
	assert.Equal(t, []int{100, 200, 400}, budgets)
}

func TestOpenRouter_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	svc := newOpenRouterForTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, chatReply("still truncated", "length"))
	})

	resp, err := svc.Complete(context.Background(), &Request{
		ModelID:  "openai/gpt-4o",
		Messages: []models.Message{{Role: models.RoleUser, Content: "q"}},
	})
	require.NoError(t, err)

	// Initial attempt + DefaultMaxRetries retries, last reply kept as-is.
	assert.Equal(t, 1+DefaultMaxRetries, calls)
	assert.Equal(t, "still truncated", resp.Content)
}

func TestOpenRouter_ZeroConfigGetsRetryBudget(t *testing.T) {
	// A config that never mentions max_retries (the factory's default path)
	// must still retry truncated replies.
	svc := NewOpenRouterService(OpenRouterConfig{})
	assert.Equal(t, DefaultMaxRetries, svc.cfg.MaxRetries)
	assert.Equal(t, DefaultMaxTokens, svc.cfg.MaxTokens)
	assert.Equal(t, DefaultOpenRouterBaseURL, svc.cfg.BaseURL)
}

func TestOpenRouter_HTTPErrorStatus(t *testing.T) {
	svc := newOpenRouterForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := svc.Complete(context.Background(), &Request{
		ModelID:  "openai/gpt-4o",
		Messages: []models.Message{{Role: models.RoleUser, Content: "q"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenRouter_ErrorPayload(t *testing.T) {
	svc := newOpenRouterForTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"model not found"}}`)
	})

	_, err := svc.Complete(context.Background(), &Request{
		ModelID:  "openai/nope",
		Messages: []models.Message{{Role: models.RoleUser, Content: "q"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOpenRouter_InitializeRequiresKey(t *testing.T) {
	t.Setenv("TEST_MISSING_KEY", "")
	svc := NewOpenRouterService(OpenRouterConfig{APIKeyEnv: "TEST_MISSING_KEY"})
	assert.Error(t, svc.Initialize(context.Background()))
}
