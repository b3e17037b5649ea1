package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"

	"github.com/SSAM36/jhc-fnl/internal/utils"
)

// CopilotService completes requests through the GitHub Copilot SDK. Each
// completion opens a fresh session pinned to the requested model, sends the
// flattened prompt, and collects the assistant messages emitted by the
// session.
type CopilotService struct {
	client copilotClient

	// NOTE: the copilot client has an autostart feature, but it misbehaves
	// when triggered from separate goroutines, so we start it exactly once
	// ourselves.
	startOnce sync.Once
	startErr  error
}

// NewCopilotService creates the engine. newClient may be nil, in which case
// the production SDK client is used; tests inject a mock through it.
func NewCopilotService(logLevel string, newClient func(*copilot.ClientOptions) copilotClient) *CopilotService {
	if logLevel == "" {
		logLevel = "error"
	}

	opts := &copilot.ClientOptions{
		LogLevel:  logLevel,
		AutoStart: copilot.Bool(false),
	}

	var client copilotClient
	if newClient == nil {
		client = newProductionCopilotClient(opts)
	} else {
		client = newClient(opts)
	}

	return &CopilotService{client: client}
}

// Initialize only checks the context; the client process starts lazily on
// the first Complete.
func (s *CopilotService) Initialize(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Complete runs one prompt through a dedicated session.
func (s *CopilotService) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.ModelID == "" {
		return nil, fmt.Errorf("completion request requires a model ID")
	}

	s.startOnce.Do(func() {
		s.startErr = s.client.Start(ctx)
	})
	if s.startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", s.startErr)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()

	session, err := s.client.CreateSession(ctx, &copilot.SessionConfig{
		Model: req.ModelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", req.ModelID, err)
	}

	var partsMu sync.Mutex
	var parts []string

	unsubscribe := session.On(func(event copilot.SessionEvent) {
		if event.Type == copilot.AssistantMessage && event.Data.Content != nil {
			partsMu.Lock()
			parts = append(parts, *event.Data.Content)
			partsMu.Unlock()
		}
	})
	defer unsubscribe()

	unsubscribe = session.On(utils.SessionToSlog)
	defer unsubscribe()

	_, err = session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: flatten(req.Messages),
	})
	if err != nil {
		return nil, fmt.Errorf("completion via %s failed: %w", req.ModelID, err)
	}

	partsMu.Lock()
	content := strings.Join(parts, "")
	partsMu.Unlock()

	return &Response{
		Content:    content,
		ModelID:    req.ModelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Shutdown stops the underlying client process.
func (s *CopilotService) Shutdown(ctx context.Context) error {
	if err := s.client.Stop(); err != nil {
		slog.Info("failed to stop copilot client", "error", err)
	}
	return nil
}
