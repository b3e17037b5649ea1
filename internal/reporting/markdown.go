// Package reporting renders finished council runs as human-readable
// markdown and HTML reports.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// InterpretConsensus returns a plain-language label for a consensus score
// (0–1).
func InterpretConsensus(score float64) string {
	switch {
	case score >= 0.9:
		return "Strong consensus"
	case score >= 0.7:
		return "Broad agreement"
	case score >= 0.4:
		return "Split opinions"
	default:
		return "Deep disagreement"
	}
}

// InterpretValidation explains how much of the council's feedback was
// usable.
func InterpretValidation(v models.ValidationSummary) string {
	if v.Total == 0 {
		return "No rankings were collected."
	}
	if v.Invalid == 0 {
		return fmt.Sprintf("All %d rankings were usable.", v.Total)
	}
	return fmt.Sprintf("%d of %d rankings were usable; %d failed validation (%s).",
		v.Valid, v.Total, v.Invalid, strings.Join(v.InvalidFrom, ", "))
}

// FormatMarkdownReport renders a council result as a markdown document.
func FormatMarkdownReport(result *models.CouncilResult) string {
	var b strings.Builder

	b.WriteString("# Council Report\n\n")
	b.WriteString(fmt.Sprintf("**Query:** %s\n\n", result.Query))
	b.WriteString(fmt.Sprintf("**Started:** %s · **Duration:** %s · **Members:** %d\n\n",
		result.StartedAt.Format(time.RFC3339),
		time.Duration(result.DurationMs)*time.Millisecond,
		len(result.Responses)))

	if synth := result.Synthesis; synth != nil {
		b.WriteString("## Final Answer\n\n")
		b.WriteString(fmt.Sprintf("_Synthesized by %s_\n\n", displayModel(synth.ModelID, synth.ModelName)))
		b.WriteString(synth.Content)
		b.WriteString("\n\n")
	}

	b.WriteString("## Aggregate Ranking\n\n")
	if len(result.Aggregate) == 0 {
		b.WriteString("No label received any votes.\n\n")
	} else {
		b.WriteString("| Place | Label | Model | Weighted Rank | Votes | Avg Confidence |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for i, entry := range result.Aggregate {
			b.WriteString(fmt.Sprintf("| %d | %s | %s | %.2f | %d | %.2f |\n",
				i+1, entry.Label, displayModel(entry.ModelID, entry.ModelName),
				entry.WeightedRank, entry.VotesCounted, entry.AvgConfidence))
		}
		b.WriteString("\n")
	}

	if report := result.Disagreement; report != nil {
		b.WriteString("## Consensus\n\n")
		b.WriteString(fmt.Sprintf("Score: **%.2f** — %s\n\n",
			report.Consensus, InterpretConsensus(report.Consensus)))

		if len(report.Disagreements) > 0 {
			b.WriteString("Contested placements:\n\n")
			for _, d := range report.Disagreements {
				marker := ""
				if report.MostContested != nil && report.MostContested.Label == d.Label {
					marker = " (most contested)"
				}
				b.WriteString(fmt.Sprintf("- Response %s: placed between %d and %d (σ %.2f)%s\n",
					d.Label, d.Positions.Min, d.Positions.Max, d.StdDev, marker))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Validation\n\n")
	b.WriteString(InterpretValidation(result.Validation))
	b.WriteString("\n\n")

	if len(result.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range result.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Individual Rankings\n\n")
	for _, rk := range result.Rankings {
		b.WriteString(fmt.Sprintf("### %s\n\n", displayModel(rk.ModelID, rk.ModelName)))
		switch {
		case rk.Failed():
			b.WriteString(fmt.Sprintf("Request failed: %s\n\n", rk.ErrorMsg))
		case rk.Empty():
			b.WriteString("No ranking could be parsed from the reply.\n\n")
		default:
			b.WriteString(fmt.Sprintf("Order: %s", strings.Join(rk.ParsedOrder, " > ")))
			if !rk.IsValid {
				b.WriteString(" (invalid)")
			}
			b.WriteString("\n\n")
			if len(rk.Criteria) > 0 {
				b.WriteString(fmt.Sprintf("Criteria: %s\n\n", strings.Join(rk.Criteria, ", ")))
			}
		}
	}

	return b.String()
}

func displayModel(id, name string) string {
	if name != "" {
		return name
	}
	return id
}
