package completion

import (
	"context"
	"strings"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// Service is the interface to a chat completion backend. The council core
// treats the backend as a black box: it hands over a model ID and a message
// sequence and gets text back.
type Service interface {
	// Initialize sets up the backend
	Initialize(ctx context.Context) error

	// Complete sends one completion request and waits for the full reply
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Shutdown cleans up resources
	Shutdown(ctx context.Context) error
}

// Request is a single completion request.
type Request struct {
	ModelID  string
	Messages []models.Message
	Timeout  time.Duration
}

// Response is the reply to a completion request.
type Response struct {
	Content    string
	ModelID    string
	DurationMs int64
}

// flatten joins a message sequence into a single prompt string for backends
// that accept only one prompt per turn.
func flatten(messages []models.Message) string {
	var builder strings.Builder
	for i, m := range messages {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(m.Content)
	}
	return builder.String()
}
