package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/SSAM36/jhc-fnl/internal/council"
	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/reporting"
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

func verboseProgressListener(event council.ProgressEvent) {
	switch event.EventType {
	case council.EventCouncilStart:
		fmt.Printf("Convening council with %d response(s)...\n\n", event.Total)
	case council.EventStageChange:
		fmt.Printf("── stage: %s\n", event.Stage)
	case council.EventResponseStart:
		fmt.Printf("[%d/%d] Asking %s...\n", event.Num, event.Total, event.ModelName)
	case council.EventResponseComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		status := "answered"
		if !event.Valid {
			status = "failed"
		}
		fmt.Printf("  %s: %s (%s)\n", event.ModelName, status, formatDuration(duration))
	case council.EventRankingStart:
		fmt.Printf("[%d/%d] Collecting ranking from %s...\n", event.Num, event.Total, event.ModelName)
	case council.EventRankingComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		status := "valid"
		if !event.Valid {
			status = "invalid"
		}
		fmt.Printf("  %s: %s (%s)\n", event.ModelName, status, formatDuration(duration))
	case council.EventSynthesisStart:
		fmt.Printf("Synthesizing final answer via %s...\n", event.ModelName)
	case council.EventSynthesisComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("Synthesis complete (%s)\n", formatDuration(duration))
	case council.EventCouncilComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("\nCouncil completed in %s\n\n", formatDuration(duration))
	}
}

func simpleProgressListener(event council.ProgressEvent) {
	switch event.EventType {
	case council.EventRankingComplete:
		icon := "✓"
		if !event.Valid {
			icon = "✗"
		}
		fmt.Printf("%s [%d/%d] %s\n", icon, event.Num, event.Total, event.ModelName)
	case council.EventSynthesisComplete:
		fmt.Println("✓ synthesis")
	}
}

func printSummary(result *models.CouncilResult) {
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println(" COUNCIL RESULTS")
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	fmt.Printf("Responses:      %d\n", len(result.Responses))
	fmt.Printf("Rankings:       %d total, %d valid, %d invalid\n",
		result.Validation.Total, result.Validation.Valid, result.Validation.Invalid)
	fmt.Printf("Consensus:      %.2f — %s\n",
		result.ConsensusScore(), reporting.InterpretConsensus(result.ConsensusScore()))

	duration := time.Duration(result.DurationMs) * time.Millisecond
	fmt.Printf("Duration:       %s\n", formatDuration(duration))
	fmt.Println()

	// Aggregate standings
	if len(result.Aggregate) > 0 {
		fmt.Println("-" + strings.Repeat("-", 50))
		fmt.Println(" AGGREGATE RANKING")
		fmt.Println("-" + strings.Repeat("-", 50))
		for i, entry := range result.Aggregate {
			name := entry.ModelName
			if name == "" {
				name = entry.ModelID
			}
			fmt.Printf("  %d. [%s] %-24s rank=%.2f votes=%d conf=%.2f\n",
				i+1, entry.Label, name, entry.WeightedRank, entry.VotesCounted, entry.AvgConfidence)
		}
		fmt.Println()
	}

	if len(result.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, w := range result.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
		fmt.Println()
	}

	if result.Synthesis != nil {
		fmt.Println("-" + strings.Repeat("-", 50))
		fmt.Println(" FINAL ANSWER")
		fmt.Println("-" + strings.Repeat("-", 50))
		fmt.Println()
		fmt.Println(result.Synthesis.Content)
		fmt.Println()
	}
}

// truncate shortens s to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
