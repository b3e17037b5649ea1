package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_Mock(t *testing.T) {
	svc, err := Create(KindMock, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockService{}, svc)
}

func TestCreate_OpenRouterDecodesParams(t *testing.T) {
	svc, err := Create(KindOpenRouter, map[string]any{
		"base_url":    "http://localhost:9999",
		"api_key_env": "MY_KEY",
		"max_tokens":  512,
	})
	require.NoError(t, err)

	or, ok := svc.(*OpenRouterService)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9999", or.cfg.BaseURL)
	assert.Equal(t, "MY_KEY", or.cfg.APIKeyEnv)
	assert.Equal(t, 512, or.cfg.MaxTokens)
}

func TestCreate_OpenRouterBadParams(t *testing.T) {
	_, err := Create(KindOpenRouter, map[string]any{
		"max_tokens": "lots",
	})
	assert.Error(t, err)
}

func TestCreate_UnknownKind(t *testing.T) {
	_, err := Create("teleport", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown completion engine")
}
