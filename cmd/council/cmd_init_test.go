package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
)

func TestInitCommand_WritesStarterConfig(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-council")

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	configPath := filepath.Join(target, projectconfig.ConfigFileName)
	assert.FileExists(t, configPath)
	assert.Contains(t, buf.String(), configPath)

	// The starter file must load back as a seatable council.
	cfg, err := projectconfig.Load(target)
	require.NoError(t, err)
	assert.Len(t, cfg.Models, 2)
	assert.Equal(t, "mock", cfg.Engine.Kind)
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, projectconfig.ConfigFileName)
	custom := "models:\n  - id: mine/model\n"
	require.NoError(t, os.WriteFile(configPath, []byte(custom), 0o644))

	cmd := newInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestInitCommand_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, projectconfig.ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("models: []\n"), 0o644))

	cmd := newInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{dir, "--force"})
	require.NoError(t, cmd.Execute())

	cfg, err := projectconfig.Load(dir)
	require.NoError(t, err)
	assert.Len(t, cfg.Models, 2)
}
