// Package analysis turns an ingredient list into a short consumer verdict by
// prompting a completion model and parsing its reply.
package analysis

// Intent is a predefined follow-up angle selected in the UI.
type Intent string

const (
	IntentNone        Intent = ""
	IntentMainConcern Intent = "mainConcern"
	IntentDailyUse    Intent = "dailyUse"
	IntentWatchOut    Intent = "watchOut"
)

// Request is the body of an analysis call.
type Request struct {
	Ingredients string `json:"ingredients"`
	Intent      Intent `json:"intent,omitempty"`
	Question    string `json:"question,omitempty"`
}

// Label names an insight by its position in the model reply.
type Label string

const (
	LabelMainConcern  Label = "main-concern"
	LabelWorthKnowing Label = "worth-knowing"
	LabelPositiveNote Label = "positive-note"
)

// positionalLabels maps reply order to labels; the model is asked for the
// bullets in this order but nothing verifies it did so.
var positionalLabels = [...]Label{LabelMainConcern, LabelWorthKnowing, LabelPositiveNote}

// MaxInsights is the number of insights requested from the model.
const MaxInsights = len(positionalLabels)

// Insight is one labeled statement shown to the user.
type Insight struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
}

// Confidence reflects how completely the reply format was honored.
type Confidence string

const (
	ConfidenceHigh     Confidence = "High"
	ConfidenceModerate Confidence = "Moderate"
	ConfidenceLow      Confidence = "Low"
)

// Result is returned to the caller for every request, successful or not.
type Result struct {
	DecisionSummary  string     `json:"decision_summary"`
	MajorIngredients []string   `json:"major_ingredients,omitempty"`
	KeyInsights      []Insight  `json:"key_insights"`
	UncertaintyNote  string     `json:"uncertainty_note"`
	ConfidenceLevel  Confidence `json:"confidence_level"`
}

const (
	summaryTooShort = "Not enough information to analyze."
	noteTooShort    = "Try pasting the full ingredient list from the product label."

	summaryUnclear = "Not enough information to analyze this input."
	noteUnclear    = "Try providing a clearer ingredient list from a food label."

	summaryFailure = "Something went wrong."
	noteFailure    = "The system could not complete this analysis."

	noteDisclaimer = "This explanation is based on typical ingredient behavior and available guidance. Individual responses can vary."

	defaultSummary = "This product has both positives and trade-offs."
)

func lowResult(summary, note string) Result {
	return Result{
		DecisionSummary: summary,
		KeyInsights:     []Insight{},
		UncertaintyNote: note,
		ConfidenceLevel: ConfidenceLow,
	}
}

// TooShortResult is returned when the raw input is missing or nearly empty.
func TooShortResult() Result { return lowResult(summaryTooShort, noteTooShort) }

// UnclearResult is returned when no usable ingredient text could be isolated.
func UnclearResult() Result { return lowResult(summaryUnclear, noteUnclear) }

// FailureResult is the uniform shape for any pipeline failure.
func FailureResult() Result { return lowResult(summaryFailure, noteFailure) }
