package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIngredientText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"marker with colon", "Ingredients: sugar, palm oil, salt, natural flavoring.", "sugar, palm oil, salt, natural flavoring."},
		{"no marker", "  sugar, salt, water  ", "sugar, salt, water"},
		{"case insensitive", "NUTRITION FACTS\nINGREDIENTS:\nwheat flour,\nwater", "wheat flour, water"},
		{"crlf", "Ingredients:\r\noats\r\nhoney", "oats honey"},
		{"marker only", "Ingredients:", ""},
		{
			"keeps six lines",
			"Ingredients:\none\ntwo\nthree\nfour\nfive\nsix\nseven",
			"one two three four five",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractIngredientText(tt.raw))
		})
	}
}

func TestIngredientKeywords(t *testing.T) {
	got := IngredientKeywords("sugar, palm oil (refined), salt, natural flavoring. soy lecithin, milk solids, cocoa butter")
	assert.Equal(t, []string{"sugar", "palm oil", "refined", "salt", "natural flavoring", "soy lecithin"}, got)

	assert.Empty(t, IngredientKeywords("a, bb, ccc"))
}

func TestObjectivePrecedence(t *testing.T) {
	assert.Equal(t, defaultObjective, Objective(IntentNone, ""))
	assert.Equal(t, defaultObjective, Objective(Intent("unknown"), ""))
	assert.Equal(t, intentObjectives[IntentWatchOut], Objective(IntentWatchOut, "   "))
	assert.Equal(t, "Is this safe for kids?", Objective(IntentWatchOut, " Is this safe for kids? "))
	assert.Equal(t, "Is this vegan?", Objective(IntentNone, "Is this vegan?"))
}

func TestBuildPrompt(t *testing.T) {
	req := Request{Ingredients: "Ingredients: sugar, palm oil, salt, natural flavoring.", Intent: IntentWatchOut}

	prompt, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Equal(t, "sugar, palm oil, salt, natural flavoring.", prompt.Cleaned)
	assert.Contains(t, prompt.Text, "Objective:\n"+intentObjectives[IntentWatchOut]+"\n")
	assert.Contains(t, prompt.Text, "Output EXACTLY 3 insights")
	assert.Contains(t, prompt.Text, "SUMMARY:")
	assert.True(t, strings.HasSuffix(prompt.Text, "INGREDIENTS:\nsugar, palm oil, salt, natural flavoring.\n"))
	assert.Equal(t, []string{"sugar", "palm oil", "salt", "natural flavoring"}, prompt.Keywords)

	again, err := BuildPrompt(req)
	require.NoError(t, err)
	assert.Equal(t, prompt.Text, again.Text, "prompt must be deterministic")
}

func TestBuildPromptInsufficientText(t *testing.T) {
	_, err := BuildPrompt(Request{Ingredients: "Ingredients: salt"})
	assert.ErrorIs(t, err, ErrInsufficientText)

	_, err = BuildPrompt(Request{Ingredients: "sugar, salt"})
	assert.NoError(t, err)
}
