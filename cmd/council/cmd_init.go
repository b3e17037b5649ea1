package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
	"github.com/SSAM36/jhc-fnl/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		interactive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a council project",
		Long: `Initialize a council project by writing a .council.yaml configuration.

Use --interactive to run a guided wizard that collects the member list,
chairman, and engine choice. Without it, a starter configuration with
placeholder members is written for you to edit.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive, force)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the guided setup wizard")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive, force bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, projectconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	var content string
	if interactive {
		answers, err := wizard.RunSetupWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		content, err = wizard.GenerateConfigYAML(answers)
		if err != nil {
			return err
		}
	} else {
		var err error
		content, err = wizard.GenerateConfigYAML(&wizard.Answers{
			Models:   []string{"openai/gpt-4o", "anthropic/claude-3.5-sonnet"},
			Engine:   "mock",
			Weighted: true,
		})
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized council project:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", configPath)            //nolint:errcheck
	if !interactive {
		fmt.Fprintln(cmd.OutOrStdout(), "Edit the member list, then validate with 'council check'.") //nolint:errcheck
	}

	return nil
}
