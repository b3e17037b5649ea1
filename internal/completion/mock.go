package completion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// responseHeadingRe finds the anonymized response headings inside an
// evaluation prompt, so the mock can rank exactly the labels it was shown.
var responseHeadingRe = regexp.MustCompile(`(?m)^## Response ([A-Z])$`)

// MockService is a deterministic offline engine used by tests and
// `engine: mock` dev runs. Evaluation prompts get a well-formed FINAL
// RANKING over the labels present in the prompt; everything else is echoed
// back with the model ID so callers can tell responses apart.
type MockService struct{}

// NewMockService creates a new mock engine.
func NewMockService() *MockService {
	return &MockService{}
}

// Initialize is a no-op.
func (m *MockService) Initialize(ctx context.Context) error {
	return nil
}

// Complete produces a deterministic reply derived from the request.
func (m *MockService) Complete(ctx context.Context, req *Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := time.Now()
	prompt := flatten(req.Messages)

	var content string
	if labels := promptLabels(prompt); len(labels) > 0 {
		content = mockRanking(labels)
	} else {
		content = fmt.Sprintf("[%s] %s", req.ModelID, lastUserContent(req.Messages))
	}

	return &Response{
		Content:    content,
		ModelID:    req.ModelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Shutdown is a no-op.
func (m *MockService) Shutdown(ctx context.Context) error {
	return nil
}

func promptLabels(prompt string) []string {
	var labels []string
	for _, m := range responseHeadingRe.FindAllStringSubmatch(prompt, -1) {
		labels = append(labels, m[1])
	}
	return labels
}

// mockRanking ranks the labels in the order they appeared, rotating through
// the confidence levels so parsers see all three.
func mockRanking(labels []string) string {
	confidences := []string{"HIGH", "MEDIUM", "LOW"}

	var sb strings.Builder
	sb.WriteString("I weighed accuracy and clarity across all answers.\n\n")
	sb.WriteString("FINAL RANKING:\n")
	for i, label := range labels {
		sb.WriteString(fmt.Sprintf("%d. Response %s (%s)\n", i+1, label, confidences[i%len(confidences)]))
	}
	return sb.String()
}

func lastUserContent(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
