package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// OpenRouterConfig holds settings for the OpenAI-compatible chat engine.
// Any endpoint speaking the chat-completions protocol works; the defaults
// target OpenRouter.
type OpenRouterConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never appears in configuration files.
	APIKeyEnv string `mapstructure:"api_key_env"`

	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`

	// MaxRetries bounds the retry-on-truncation loop: when a reply stops
	// with finish_reason "length", the request is retried with a doubled
	// token budget.
	MaxRetries int `mapstructure:"max_retries"`

	RequestTimeoutSec int `mapstructure:"request_timeout_seconds"`
}

// Defaults for the OpenRouter engine.
const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterKeyEnv  = "OPENROUTER_API_KEY"
	DefaultMaxTokens         = 2048
	DefaultMaxRetries        = 2
	DefaultRequestTimeoutSec = 120
)

// OpenRouterService is a chat-completions client for OpenAI-compatible
// endpoints with retry-on-truncation.
type OpenRouterService struct {
	cfg    OpenRouterConfig
	apiKey string
	client *http.Client
}

// NewOpenRouterService creates the engine, filling unset config fields with
// defaults. The API key is read from the environment at Initialize.
func NewOpenRouterService(cfg OpenRouterConfig) *OpenRouterService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultOpenRouterKeyEnv
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = DefaultRequestTimeoutSec
	}

	return &OpenRouterService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
		},
	}
}

// Initialize reads the API key from the configured environment variable.
func (s *OpenRouterService) Initialize(ctx context.Context) error {
	s.apiKey = os.Getenv(s.cfg.APIKeyEnv)
	if s.apiKey == "" {
		return fmt.Errorf("environment variable %s is not set", s.cfg.APIKeyEnv)
	}
	return nil
}

// Shutdown closes idle connections.
func (s *OpenRouterService) Shutdown(ctx context.Context) error {
	s.client.CloseIdleConnections()
	return nil
}

// chatRequest is the wire format of a chat-completions request.
type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
}

// chatResponse is the subset of the chat-completions reply we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete sends one chat-completion request. Replies truncated at the token
// limit (finish_reason "length") are retried with a doubled budget, up to
// MaxRetries times; the last reply is returned either way.
func (s *OpenRouterService) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.ModelID == "" {
		return nil, fmt.Errorf("completion request requires a model ID")
	}

	start := time.Now()
	maxTokens := s.cfg.MaxTokens

	var content string
	var finishReason string
	var err error

	for attempt := 0; ; attempt++ {
		content, finishReason, err = s.send(ctx, req, maxTokens)
		if err != nil {
			return nil, err
		}
		if finishReason != "length" || attempt >= s.cfg.MaxRetries {
			break
		}
		maxTokens *= 2
		slog.Debug("reply truncated, retrying with larger budget",
			"model", req.ModelID, "max_tokens", maxTokens, "attempt", attempt+1)
	}

	return &Response{
		Content:    content,
		ModelID:    req.ModelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (s *OpenRouterService) send(ctx context.Context, req *Request, maxTokens int) (content, finishReason string, err error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model:       req.ModelID,
		Messages:    req.Messages,
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", "", fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("chat request to %s: %w", req.ModelID, err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading chat response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("chat request to %s: status %d: %s",
			req.ModelID, httpResp.StatusCode, truncateForError(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", "", fmt.Errorf("parsing chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", "", fmt.Errorf("chat request to %s: %s", req.ModelID, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", "", fmt.Errorf("chat response from %s has no choices", req.ModelID)
	}

	choice := parsed.Choices[0]
	return choice.Message.Content, choice.FinishReason, nil
}

func truncateForError(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
