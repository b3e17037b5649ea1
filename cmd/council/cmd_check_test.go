package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, projectconfig.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckCommand_ValidConfig(t *testing.T) {
	path := writeConfig(t, `models:
  - id: alpha/one
  - id: beta/two
chairman: alpha/one
engine:
  kind: mock
`)

	var buf bytes.Buffer
	cmd := newCheckCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "configuration is valid")
}

func TestCheckCommand_SchemaViolation(t *testing.T) {
	path := writeConfig(t, `models:
  - id: alpha/one
engine:
  kind: carrier-pigeon
`)

	var buf bytes.Buffer
	cmd := newCheckCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "problem(s) found")
	assert.Contains(t, buf.String(), "✗")
}

func TestCheckCommand_TooFewMembers(t *testing.T) {
	path := writeConfig(t, `models:
  - id: alpha/one
engine:
  kind: mock
`)

	var buf bytes.Buffer
	cmd := newCheckCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	require.Error(t, cmd.Execute())
	assert.Contains(t, buf.String(), "at least 2 members")
}

func TestCheckCommand_ChairmanNotAMember(t *testing.T) {
	path := writeConfig(t, `models:
  - id: alpha/one
  - id: beta/two
chairman: gamma/three
engine:
  kind: mock
`)

	var buf bytes.Buffer
	cmd := newCheckCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	require.Error(t, cmd.Execute())
	assert.Contains(t, buf.String(), "not a council member")
}

func TestCheckCommand_DuplicateMembers(t *testing.T) {
	path := writeConfig(t, `models:
  - id: alpha/one
  - id: alpha/one
engine:
  kind: mock
`)

	var buf bytes.Buffer
	cmd := newCheckCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})
	require.Error(t, cmd.Execute())
	assert.Contains(t, buf.String(), "duplicate member")
}

func TestCheckCommand_JSONFormat(t *testing.T) {
	path := writeConfig(t, `models:
  - id: alpha/one
  - id: beta/two
engine:
  kind: mock
`)

	var buf bytes.Buffer
	cmd := newCheckCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{path, "--format", "json"})
	require.NoError(t, cmd.Execute())

	var report checkJSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, path, report.Path)
	assert.Empty(t, report.Problems)
}

func TestCheckCommand_NoConfigFound(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newCheckCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .council.yaml found")
}
