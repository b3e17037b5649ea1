package completion

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Engine kinds accepted by Create.
const (
	KindOpenRouter = "openrouter"
	KindCopilot    = "copilot"
	KindMock       = "mock"
)

// Create builds a completion Service of the given kind. Engine-specific
// settings arrive as a loose map (typically from .council.yaml) and are
// decoded into the engine's own config struct.
func Create(kind string, params map[string]any) (Service, error) {
	switch kind {
	case KindOpenRouter:
		var cfg OpenRouterConfig
		if err := mapstructure.Decode(params, &cfg); err != nil {
			return nil, fmt.Errorf("decoding %s engine config: %w", kind, err)
		}
		return NewOpenRouterService(cfg), nil

	case KindCopilot:
		var cfg struct {
			LogLevel string `mapstructure:"log_level"`
		}
		if err := mapstructure.Decode(params, &cfg); err != nil {
			return nil, fmt.Errorf("decoding %s engine config: %w", kind, err)
		}
		return NewCopilotService(cfg.LogLevel, nil), nil

	case KindMock:
		return NewMockService(), nil

	default:
		return nil, fmt.Errorf("unknown completion engine: %q", kind)
	}
}
