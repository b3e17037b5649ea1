package ranking

import (
	"fmt"
	"strings"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// EvaluatorSystemPrompt is the system message given to every ranking model.
const EvaluatorSystemPrompt = "You are an impartial evaluator on a review panel. " +
	"You judge anonymized answers strictly on their merits and never guess which " +
	"model wrote which answer."

// BuildEvaluationPrompt renders the free-text evaluation prompt: the query,
// every anonymized response, and instructions to close with a FINAL RANKING
// section in the line format the parser expects.
func BuildEvaluationPrompt(query string, labeled []models.LabeledResponse) string {
	var sb strings.Builder
	sb.WriteString("Several anonymous assistants answered the same question. Evaluate every answer on its merits.\n\n")
	sb.WriteString("## Question\n")
	sb.WriteString(query)
	sb.WriteString("\n\n")
	for _, lr := range labeled {
		sb.WriteString(fmt.Sprintf("## Response %s\n%s\n\n", lr.Label, lr.Response.Content))
	}
	sb.WriteString("Judge each response for accuracy, completeness, clarity and relevance, ")
	sb.WriteString("and briefly explain the criteria you weighed.\n\n")
	sb.WriteString("Then give your verdict under the exact heading below: best response first, ")
	sb.WriteString("one numbered line per response, every label exactly once, each line marked ")
	sb.WriteString("with your confidence.\n\n")
	sb.WriteString("FINAL RANKING:\n")
	sb.WriteString("1. Response [letter] ([HIGH|MEDIUM|LOW])\n")
	sb.WriteString("2. Response [letter] ([HIGH|MEDIUM|LOW])\n")
	sb.WriteString("...\n")
	return sb.String()
}

// BuildStructuredEvaluationPrompt renders the JSON-contract variant of the
// evaluation prompt. The reply is expected to be a single JSON object; the
// collector falls back to the lenient text parser when it is not.
func BuildStructuredEvaluationPrompt(query string, labeled []models.LabeledResponse) string {
	var sb strings.Builder
	sb.WriteString("Several anonymous assistants answered the same question. Evaluate every answer on its merits.\n\n")
	sb.WriteString("## Question\n")
	sb.WriteString(query)
	sb.WriteString("\n\n")
	for _, lr := range labeled {
		sb.WriteString(fmt.Sprintf("## Response %s\n%s\n\n", lr.Label, lr.Response.Content))
	}
	sb.WriteString("Reply with a single JSON object and nothing else, in this shape:\n\n")
	sb.WriteString("{\"ranking\": [{\"label\": \"A\", \"confidence\": \"HIGH\"}], \"criteria\": [\"accuracy\"]}\n\n")
	sb.WriteString("List every label exactly once in the ranking array, best response first. ")
	sb.WriteString("Confidence must be HIGH, MEDIUM or LOW. The criteria array names the ")
	sb.WriteString("quality criteria you weighed.\n")
	return sb.String()
}
