package synthesis

import (
	"fmt"
	"strings"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

const chairmanSystemPrompt = "You are the chairman of a model council. Several " +
	"assistants answered the same question and then reviewed each other's " +
	"answers. Your job is to write the single best final answer, drawing on " +
	"the strongest material and correcting what the reviews flagged."

// BuildSynthesisPrompt renders the chairman prompt. Unlike the evaluation
// prompt, the responses here are attributed by model name: anonymity only
// matters while the council is still judging.
func BuildSynthesisPrompt(query string, responses []models.CandidateResponse, rankings []models.Ranking) string {
	var sb strings.Builder
	sb.WriteString("## Question\n")
	sb.WriteString(query)
	sb.WriteString("\n\n## Candidate answers\n\n")

	for _, r := range responses {
		sb.WriteString(fmt.Sprintf("### Answer from %s\n%s\n\n", displayName(r.ModelID, r.ModelName), r.Content))
	}

	sb.WriteString("## Peer reviews\n\n")
	for _, r := range rankings {
		name := displayName(r.ModelID, r.ModelName)
		switch {
		case r.Failed():
			sb.WriteString(fmt.Sprintf("### Review by %s\n(review unavailable: %s)\n\n", name, r.ErrorMsg))
		case r.RawText == "":
			sb.WriteString(fmt.Sprintf("### Review by %s\n(no review produced)\n\n", name))
		default:
			sb.WriteString(fmt.Sprintf("### Review by %s\n%s\n\n", name, r.RawText))
		}
	}

	sb.WriteString("Write the single best final answer to the question. Merge the ")
	sb.WriteString("strongest points of the candidate answers, fix anything the reviews ")
	sb.WriteString("criticized, and do not mention the council, the answers or the ")
	sb.WriteString("reviews in your reply.\n")
	return sb.String()
}

func displayName(id, name string) string {
	if name != "" {
		return name
	}
	return id
}
