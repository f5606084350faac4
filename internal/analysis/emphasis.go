package analysis

import (
	"regexp"
	"strings"
)

var markupChars = strings.NewReplacer("*", "", "_", "", "`", "")

// Emphasize strips markdown emphasis from text and wraps whole-word,
// case-insensitive occurrences of each keyword in <strong> tags. Matched text
// keeps its casing.
func Emphasize(text string, keywords []string) string {
	clean := markupChars.Replace(text)
	for _, word := range keywords {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b(` + regexp.QuoteMeta(word) + `)\b`)
		if err != nil {
			continue
		}
		clean = re.ReplaceAllString(clean, "<strong>$1</strong>")
	}
	return clean
}
