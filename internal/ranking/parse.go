package ranking

import (
	"regexp"
	"strings"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

// rankingMarker introduces the verdict section of an evaluator reply.
const rankingMarker = "FINAL RANKING:"

var (
	// "1. Response A (HIGH)" — confidence matched case-insensitively
	numberedConfidenceRe = regexp.MustCompile(`(?m)^\s*\d+\.\s*Response\s+([A-Z])\s*\(\s*((?i)HIGH|MEDIUM|LOW)\s*\)`)

	// "1. Response A"
	numberedRe = regexp.MustCompile(`(?m)^\s*\d+\.\s*Response\s+([A-Z])\b`)

	// "Response A" anywhere
	bareMentionRe = regexp.MustCompile(`Response\s+([A-Z])\b`)
)

// criteriaVocabulary is the fixed set of quality criteria recognized in
// evaluator replies, in reporting order.
var criteriaVocabulary = []string{
	"accuracy", "completeness", "clarity", "relevance", "depth", "detail",
	"precision", "coherence", "creativity", "practicality", "technical",
	"understandable", "concise", "thorough",
}

// criteriaPhrases introduce spans of text that are scanned for criteria
// keywords in addition to the full-text scan.
var criteriaPhrases = []string{"criteria:", "criterion:", "evaluating", "considering"}

// ParsedRanking is the outcome of parsing one evaluator reply. Order may
// contain duplicates: deduplication is the validator's concern, not the
// parser's.
type ParsedRanking struct {
	Order      []string
	Confidence map[string]models.Confidence
	Criteria   []string
}

// Parse recovers a ranking from free-form evaluator text. It degrades
// through four tiers and never fails: an unparseable reply simply yields an
// empty Order.
//
//  1. Numbered "Response <L> (<confidence>)" lines after the FINAL RANKING
//     marker.
//  2. Numbered "Response <L>" lines after the marker; confidence defaults
//     to MEDIUM.
//  3. Any "Response <L>" mention after the marker; confidence MEDIUM.
//  4. No marker at all: any "Response <L>" mention in the whole text;
//     confidence MEDIUM.
func Parse(text string) ParsedRanking {
	parsed := ParsedRanking{
		Confidence: make(map[string]models.Confidence),
		Criteria:   extractCriteria(text),
	}

	section, hasMarker := rankingSection(text)
	if !hasMarker {
		parsed.Order = appendBareMentions(&parsed, text)
		return parsed
	}

	if matches := numberedConfidenceRe.FindAllStringSubmatch(section, -1); len(matches) > 0 {
		for _, m := range matches {
			label := m[1]
			parsed.Order = append(parsed.Order, label)
			parsed.Confidence[label] = models.Confidence(strings.ToUpper(m[2]))
		}
		return parsed
	}

	if matches := numberedRe.FindAllStringSubmatch(section, -1); len(matches) > 0 {
		for _, m := range matches {
			label := m[1]
			parsed.Order = append(parsed.Order, label)
			parsed.Confidence[label] = models.ConfidenceMedium
		}
		return parsed
	}

	parsed.Order = appendBareMentions(&parsed, section)
	return parsed
}

// rankingSection returns the text after the first FINAL RANKING marker.
func rankingSection(text string) (string, bool) {
	idx := strings.Index(text, rankingMarker)
	if idx < 0 {
		return "", false
	}
	return text[idx+len(rankingMarker):], true
}

func appendBareMentions(parsed *ParsedRanking, text string) []string {
	var order []string
	for _, m := range bareMentionRe.FindAllStringSubmatch(text, -1) {
		label := m[1]
		order = append(order, label)
		parsed.Confidence[label] = models.ConfidenceMedium
	}
	return order
}

// extractCriteria scans the full reply, case-insensitively, for known
// quality-criteria keywords: once over the whole text, and once over the
// remainder of any line that follows a criteria phrase. Results come back
// deduplicated in vocabulary order; nil when nothing matched.
func extractCriteria(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]bool)

	for _, kw := range criteriaVocabulary {
		if strings.Contains(lower, kw) {
			found[kw] = true
		}
	}

	for _, phrase := range criteriaPhrases {
		rest := lower
		for {
			i := strings.Index(rest, phrase)
			if i < 0 {
				break
			}
			rest = rest[i+len(phrase):]
			window := rest
			if nl := strings.IndexByte(window, '\n'); nl >= 0 {
				window = window[:nl]
			}
			for _, kw := range criteriaVocabulary {
				if strings.Contains(window, kw) {
					found[kw] = true
				}
			}
		}
	}

	var criteria []string
	for _, kw := range criteriaVocabulary {
		if found[kw] {
			criteria = append(criteria, kw)
		}
	}
	return criteria
}
