package ranking

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SSAM36/jhc-fnl/internal/models"
	"github.com/SSAM36/jhc-fnl/internal/validation"
)

// structuredVerdict mirrors the JSON contract requested by
// BuildStructuredEvaluationPrompt.
type structuredVerdict struct {
	Ranking []struct {
		Label      string `json:"label"`
		Confidence string `json:"confidence"`
	} `json:"ranking"`
	Criteria []string `json:"criteria"`
}

// ParseStructured extracts the first JSON object from an evaluator reply and
// interprets it as a structured verdict, after validating it against the
// embedded ranking schema. Callers fall back to Parse on any error, so the
// lenient text path always remains available.
func ParseStructured(text string) (ParsedRanking, error) {
	raw, err := firstJSONObject(text)
	if err != nil {
		return ParsedRanking{}, err
	}

	if err := validation.ValidateRankingPayload([]byte(raw)); err != nil {
		return ParsedRanking{}, err
	}

	var verdict structuredVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return ParsedRanking{}, fmt.Errorf("decoding structured verdict: %w", err)
	}

	parsed := ParsedRanking{
		Confidence: make(map[string]models.Confidence, len(verdict.Ranking)),
		Criteria:   verdict.Criteria,
	}
	for _, entry := range verdict.Ranking {
		parsed.Order = append(parsed.Order, entry.Label)

		conf := models.Confidence(strings.ToUpper(entry.Confidence))
		switch conf {
		case models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow:
		default:
			conf = models.ConfidenceMedium
		}
		parsed.Confidence[entry.Label] = conf
	}
	return parsed, nil
}

// firstJSONObject returns the first balanced {...} span in text, skipping
// braces inside JSON strings. Replies often wrap the payload in prose or a
// code fence, so a plain json.Unmarshal of the whole text is not enough.
func firstJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in reply")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object in reply")
}
