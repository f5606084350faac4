package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// maxIngredientLines bounds how much text after the marker is kept.
	maxIngredientLines = 6
	maxKeywords        = 6
	minKeywordLen      = 4
	// MinCleanedLength is the shortest cleaned ingredient text worth prompting on.
	MinCleanedLength = 10
)

// ErrInsufficientText means the cleaned ingredient text is too short to analyze.
var ErrInsufficientText = errors.New("analysis: insufficient ingredient text")

var (
	ingredientsMarker = regexp.MustCompile(`(?i)ingredients`)
	keywordSeparators = regexp.MustCompile(`[,().]`)
)

const defaultObjective = "Give an overall consumer understanding of this product."

var intentObjectives = map[Intent]string{
	IntentMainConcern: "Identify the single most important concern a consumer should know.",
	IntentDailyUse:    "Explain what happens if this product is consumed frequently over time.",
	IntentWatchOut:    "Highlight sensitivities, edge cases, or situations requiring caution.",
}

// Prompt is the built completion prompt plus the values derived on the way.
type Prompt struct {
	Text     string
	Cleaned  string
	Keywords []string
}

// ExtractIngredientText isolates the ingredient list from raw label text.
// When the word "ingredients" occurs (any case), only the first lines after it
// are kept and joined with spaces; otherwise the whole text is used.
func ExtractIngredientText(raw string) string {
	loc := ingredientsMarker.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}
	lines := strings.Split(strings.ReplaceAll(raw[loc[1]:], "\r", ""), "\n")
	if len(lines) > maxIngredientLines {
		lines = lines[:maxIngredientLines]
	}
	joined := strings.TrimSpace(strings.Join(lines, " "))
	return strings.TrimSpace(strings.TrimLeft(joined, ":"))
}

// IngredientKeywords returns up to six fragments of the cleaned text, split on
// commas, parentheses and periods, that are longer than three characters.
func IngredientKeywords(cleaned string) []string {
	keywords := make([]string, 0, maxKeywords)
	for _, part := range keywordSeparators.Split(cleaned, -1) {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) < minKeywordLen {
			continue
		}
		keywords = append(keywords, part)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// Objective picks the instruction sentence. A non-empty question always wins
// over intent; unknown intents fall back to the general objective.
func Objective(intent Intent, question string) string {
	if q := strings.TrimSpace(question); q != "" {
		return q
	}
	if objective, ok := intentObjectives[intent]; ok {
		return objective
	}
	return defaultObjective
}

// BuildPrompt assembles the completion prompt. It returns ErrInsufficientText
// when fewer than MinCleanedLength characters of ingredient text remain.
func BuildPrompt(req Request) (Prompt, error) {
	cleaned := ExtractIngredientText(req.Ingredients)
	if utf8.RuneCountInString(cleaned) < MinCleanedLength {
		return Prompt{Cleaned: cleaned}, ErrInsufficientText
	}

	var b strings.Builder
	b.WriteString("You are an AI food-label copilot.\n\n")
	fmt.Fprintf(&b, "Objective:\n%s\n\n", Objective(req.Intent, req.Question))
	b.WriteString(formattingRules)
	b.WriteString(outputTemplate)
	b.WriteString(cleaned)
	b.WriteString("\n")

	return Prompt{
		Text:     b.String(),
		Cleaned:  cleaned,
		Keywords: IngredientKeywords(cleaned),
	}, nil
}

const formattingRules = `STRICT RULES:
- Output EXACTLY 3 insights
- Each insight must be ONE short sentence (max 20 words)
- Bold 2-3 key ingredient or health-relevant terms in EACH insight using **bold**
- Bold nothing else
- No paragraphs
- No uncertainty explanations
- No medical advice
- Be specific to the ingredients

`

const outputTemplate = `Format exactly like this:

SUMMARY:
<one clear consumer verdict>

INSIGHTS:
- <main concern>
- <worth knowing>
- <positive note>

INGREDIENTS:
`
