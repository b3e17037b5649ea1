// Package wizard provides the interactive setup flow that produces a
// .council.yaml project configuration.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
)

// Answers holds all fields collected during the interactive wizard.
type Answers struct {
	Models     []string
	Chairman   string
	Engine     string
	Weighted   bool
	CacheRuns  bool
	SessionLog bool
}

// RunSetupWizard runs an interactive huh form to collect council
// configuration.
func RunSetupWizard(in io.Reader, out io.Writer) (*Answers, error) {
	var (
		modelsRaw  string
		chairman   string
		engine     = projectconfig.DefaultEngine
		weighted   = true
		cacheRuns  bool
		sessionLog bool
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Council members").
				Description("Comma-separated model IDs, at least two").
				Placeholder("openai/gpt-4o, anthropic/claude-3.5-sonnet").
				Value(&modelsRaw).
				Validate(func(s string) error {
					return ValidateMembers(splitAndTrim(s))
				}),
			huh.NewInput().
				Title("Chairman").
				Description("Model that writes the final answer (empty: first member)").
				Value(&chairman),
			huh.NewSelect[string]().
				Title("Completion engine").
				Options(
					huh.NewOption("openrouter", "openrouter"),
					huh.NewOption("copilot", "copilot"),
					huh.NewOption("mock", "mock"),
				).
				Value(&engine),
			huh.NewConfirm().
				Title("Weight votes by past performance?").
				Value(&weighted),
			huh.NewConfirm().
				Title("Cache identical runs?").
				Value(&cacheRuns),
			huh.NewConfirm().
				Title("Record session logs?").
				Value(&sessionLog),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &Answers{
		Models:     splitAndTrim(modelsRaw),
		Chairman:   strings.TrimSpace(chairman),
		Engine:     engine,
		Weighted:   weighted,
		CacheRuns:  cacheRuns,
		SessionLog: sessionLog,
	}, nil
}

// ValidateMembers checks that the entered member list can seat a council.
func ValidateMembers(models []string) error {
	if len(models) < 2 {
		return fmt.Errorf("a council needs at least two models")
	}
	seen := make(map[string]bool, len(models))
	for _, id := range models {
		if seen[id] {
			return fmt.Errorf("duplicate model %q", id)
		}
		seen[id] = true
	}
	return nil
}

// BuildConfig turns wizard answers into a project configuration.
func BuildConfig(a *Answers) *projectconfig.ProjectConfig {
	cfg := projectconfig.New()
	for _, id := range a.Models {
		cfg.Models = append(cfg.Models, projectconfig.ModelEntry{ID: id})
	}
	cfg.Chairman = a.Chairman
	cfg.Engine.Kind = a.Engine
	*cfg.Options.WeightedAggregation = a.Weighted
	*cfg.Options.ConfidenceWeighting = a.Weighted
	*cfg.Cache.Enabled = a.CacheRuns
	*cfg.Session.Log = a.SessionLog
	return cfg
}

// GenerateConfigYAML renders a .council.yaml document from wizard answers.
func GenerateConfigYAML(a *Answers) (string, error) {
	data, err := yaml.Marshal(BuildConfig(a))
	if err != nil {
		return "", fmt.Errorf("rendering config: %w", err)
	}
	return "# Council configuration. See `council check` to validate edits.\n" + string(data), nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
