package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/SSAM36/jhc-fnl/internal/perfstore"
	"github.com/SSAM36/jhc-fnl/internal/projectconfig"
	"github.com/SSAM36/jhc-fnl/internal/statistics"
)

func newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Show council members and their performance history",
		Long: `Show the configured council members together with the performance history
the aggregator uses for vote weighting: average quality score with a 95%
bootstrap confidence interval, error rate, and run counts.`,
		RunE: modelsCommandE,
	}
	return cmd
}

func modelsCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := projectconfig.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var store perfstore.Store = perfstore.NullStore{}
	if boolVal(cfg.Performance.Enabled) {
		fs, err := perfstore.OpenFileStore(cfg.Performance.Path)
		if err != nil {
			return fmt.Errorf("opening performance store: %w", err)
		}
		store = fs
	}

	out := cmd.OutOrStdout()

	if len(cfg.Models) == 0 {
		fmt.Fprintf(out, "No council members configured. Run 'council init' to create %s.\n", projectconfig.ConfigFileName)
		return nil
	}

	type row struct {
		name, role, quality, ci, errRate, runs string
	}
	rows := make([]row, 0, len(cfg.Models))

	for _, m := range cfg.Models {
		r := row{
			name:    m.ID,
			role:    "member",
			quality: "-",
			ci:      "-",
			errRate: "-",
			runs:    "0",
		}
		if m.Name != "" {
			r.name = fmt.Sprintf("%s (%s)", m.Name, m.ID)
		}
		if m.ID == cfg.Chairman {
			r.role = "chairman"
		}

		if stats, ok := store.StatsFor(m.ID); ok {
			r.runs = fmt.Sprintf("%d", stats.TotalRuns)
			r.errRate = fmt.Sprintf("%.1f%%", stats.ErrorRate*100)
			if stats.AvgQualityScore != nil {
				r.quality = fmt.Sprintf("%.1f", *stats.AvgQualityScore)
			}
			if len(stats.QualityHistory) >= 2 {
				ci := statistics.BootstrapCI(stats.QualityHistory, 0.95)
				r.ci = fmt.Sprintf("[%.1f, %.1f]", ci.Lower, ci.Upper)
			}
		}
		rows = append(rows, r)
	}

	// Chairman first, then configured order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].role == "chairman" && rows[j].role != "chairman"
	})

	headers := []string{"Model", "Role", "Avg Quality", "CI95", "Error Rate", "Runs"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		cells := []string{r.name, r.role, r.quality, r.ci, r.errRate, r.runs}
		for i, c := range cells {
			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = padRight(c, widths[i])
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	printRow(sep)
	for _, r := range rows {
		printRow([]string{r.name, r.role, r.quality, r.ci, r.errRate, r.runs})
	}

	if cfg.Chairman == "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "No chairman configured; the first responding member will preside.")
	}

	return nil
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
