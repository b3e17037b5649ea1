package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SSAM36/jhc-fnl/internal/completion"
	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
	"github.com/SSAM36/jhc-fnl/internal/validation"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [config-path]",
		Short: "Check the council configuration",
		Long: `Check the council configuration for schema and semantic problems.

Validates .council.yaml against its JSON schema, then checks that the
configuration can actually seat a council: at least two members, a known
engine kind, and a chairman that is one of the members (when set).

With no arguments, searches upward from the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().String("format", "text", "Output format: text | json")
	return cmd
}

type checkJSONReport struct {
	Timestamp string   `json:"timestamp"`
	Path      string   `json:"path"`
	Valid     bool     `json:"valid"`
	Problems  []string `json:"problems,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		found, err := projectconfig.FindPath(".")
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no %s found (run 'council init')", projectconfig.ConfigFileName)
		}
		if err != nil {
			return fmt.Errorf("locating %s: %w", projectconfig.ConfigFileName, err)
		}
		path = found
	}

	problems, err := validation.ValidateConfigFile(path)
	if err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}

	// Schema-clean configs still get the semantic checks.
	if len(problems) == 0 {
		problems = append(problems, semanticProblems(path)...)
	}

	out := cmd.OutOrStdout()

	if format == "json" {
		report := checkJSONReport{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      path,
			Valid:     len(problems) == 0,
			Problems:  problems,
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data)) //nolint:errcheck
	} else {
		fmt.Fprintf(out, "Checking %s\n\n", path) //nolint:errcheck
		if len(problems) == 0 {
			fmt.Fprintln(out, "✓ configuration is valid") //nolint:errcheck
		} else {
			for _, p := range problems {
				fmt.Fprintf(out, "✗ %s\n", p) //nolint:errcheck
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found in %s", len(problems), path)
	}
	return nil
}

// semanticProblems reports configuration problems the schema cannot express.
func semanticProblems(path string) []string {
	var problems []string

	cfg, err := projectconfig.Load(filepath.Dir(path))
	if err != nil {
		return []string{fmt.Sprintf("loading config: %v", err)}
	}

	if len(cfg.Models) < 2 {
		problems = append(problems, fmt.Sprintf("a council needs at least 2 members, got %d", len(cfg.Models)))
	}

	seen := map[string]bool{}
	for _, m := range cfg.Models {
		if m.ID == "" {
			problems = append(problems, "a member is missing its model id")
			continue
		}
		if seen[m.ID] {
			problems = append(problems, fmt.Sprintf("duplicate member %q", m.ID))
		}
		seen[m.ID] = true
	}

	if cfg.Chairman != "" && len(seen) > 0 && !seen[cfg.Chairman] {
		problems = append(problems, fmt.Sprintf("chairman %q is not a council member", cfg.Chairman))
	}

	switch cfg.Engine.Kind {
	case completion.KindOpenRouter, completion.KindCopilot, completion.KindMock:
	default:
		problems = append(problems, fmt.Sprintf("unknown engine kind %q", cfg.Engine.Kind))
	}

	if boolVal(cfg.Publish.Azure.Enabled) && cfg.Publish.Azure.ServiceURL == "" {
		problems = append(problems, "publish.azure.enabled is set but service_url is empty")
	}

	return problems
}
