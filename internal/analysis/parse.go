package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minInsightLen drops blank and noise lines such as stray headings.
const minInsightLen = 20

var (
	summaryPattern  = regexp.MustCompile(`SUMMARY:\s*(.*)`)
	insightsPattern = regexp.MustCompile(`(?s)INSIGHTS:\s*(.*)`)
)

// Outcome classifies how much of the expected reply format was found.
type Outcome int

const (
	ParseEmpty Outcome = iota
	ParsePartial
	ParseFull
)

func (o Outcome) String() string {
	switch o {
	case ParseFull:
		return "full"
	case ParsePartial:
		return "partial"
	default:
		return "empty"
	}
}

// Parsed is the structured form of a completion reply.
type Parsed struct {
	Summary  string
	Insights []Insight
	Outcome  Outcome
}

// Confidence maps the parse outcome of a completed pipeline run to a level.
func (p Parsed) Confidence() Confidence {
	if p.Outcome == ParseFull {
		return ConfidenceHigh
	}
	return ConfidenceModerate
}

// ParseCompletion reads the SUMMARY / INSIGHTS sections of a reply. Missing
// sections degrade to a default summary or fewer insights; it never fails.
func ParseCompletion(raw string) Parsed {
	parsed := Parsed{Summary: parseSummary(raw)}

	lines := insightLines(raw)
	parsed.Insights = make([]Insight, 0, len(lines))
	for i, text := range lines {
		parsed.Insights = append(parsed.Insights, Insight{Label: positionalLabels[i], Text: text})
	}

	switch len(parsed.Insights) {
	case 0:
		parsed.Outcome = ParseEmpty
	case MaxInsights:
		parsed.Outcome = ParseFull
	default:
		parsed.Outcome = ParsePartial
	}
	return parsed
}

func parseSummary(raw string) string {
	m := summaryPattern.FindStringSubmatch(raw)
	if m == nil {
		return defaultSummary
	}
	if summary := strings.TrimSpace(m[1]); summary != "" {
		return summary
	}
	return defaultSummary
}

// insightLines returns up to MaxInsights non-trivial lines following INSIGHTS:,
// in reply order, with a leading bullet dash removed.
func insightLines(raw string) []string {
	m := insightsPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if utf8.RuneCountInString(line) < minInsightLen {
			continue
		}
		out = append(out, line)
		if len(out) == MaxInsights {
			break
		}
	}
	return out
}
