// Package localize maps a validated decision card into a language-labeled
// presentation. Only section headings and the verdict token are translated
// through static tables; free-text content passes through untouched.
package localize

import (
	"fmt"
	"strings"

	"safeplate/server/internal/card"
	"safeplate/server/internal/lang"
)

// LabelSet holds the per-language heading strings of the rendered card.
type LabelSet struct {
	DecisionCard     string `json:"decisionCard"`
	Verdict          string `json:"verdict"`
	WhyThisMatters   string `json:"whyThisMatters"`
	WhyYouMightCare  string `json:"whyYouMightCare"`
	Confidence       string `json:"confidence"`
	Uncertainty      string `json:"uncertainty"`
	BetterChoiceHint string `json:"betterChoiceHint"`
	Closure          string `json:"closure"`
}

// Complete reports whether every label in the set is non-empty.
func (l LabelSet) Complete() bool {
	for _, s := range []string{
		l.DecisionCard, l.Verdict, l.WhyThisMatters, l.WhyYouMightCare,
		l.Confidence, l.Uncertainty, l.BetterChoiceHint, l.Closure,
	} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

var labelSets = map[string]LabelSet{
	"en": {
		DecisionCard:     "DECISION CARD",
		Verdict:          "Verdict:",
		WhyThisMatters:   "Why this matters:",
		WhyYouMightCare:  "Why you might care:",
		Confidence:       "Confidence:",
		Uncertainty:      "Uncertainty:",
		BetterChoiceHint: "Better choice hint (optional, non-pushy):",
		Closure:          "Closure:",
	},
	"hi": {
		DecisionCard:     "निर्णय कार्ड",
		Verdict:          "निर्णय:",
		WhyThisMatters:   "यह क्यों मायने रखता है:",
		WhyYouMightCare:  "आपको क्यों परवाह हो सकती है:",
		Confidence:       "विश्वास:",
		Uncertainty:      "अनिश्चितता:",
		BetterChoiceHint: "बेहतर विकल्प संकेत (वैकल्पिक, बिना दबाव):",
		Closure:          "समापन:",
	},
}

// Verdict tokens have static translations only where a reviewed table
// exists. Every other language keeps the English token: an untranslated
// verdict beats a wrong one.
var verdictTables = map[string]map[string]string{
	"hi": {
		card.VerdictSafe:             "ठीक है",
		card.VerdictOkayOccasionally: "कभी-कभी ठीक",
		card.VerdictBetterToAvoid:    "बेहतर है बचें",
	},
}

// DefaultLabels returns the English label set.
func DefaultLabels() LabelSet {
	return labelSets["en"]
}

// Labels returns the static label set for a language when one exists.
func Labels(language string) (LabelSet, bool) {
	set, ok := labelSets[lang.Normalize(language)]
	return set, ok
}

// Localized is the presentation form of a decision card: the resolved
// language, the heading labels, and the card with a possibly-translated
// verdict token. It is a new value; the input card is never mutated.
type Localized struct {
	Language string            `json:"language"`
	Labels   LabelSet          `json:"labels"`
	Card     card.DecisionCard `json:"decisionCard"`
}

// Localize builds the presentation object for a card. When labels is nil the
// static table for the language is used, falling back to English.
func Localize(c card.DecisionCard, language string, labels *LabelSet) Localized {
	code := lang.Normalize(language)

	set := DefaultLabels()
	if labels != nil {
		set = *labels
	} else if static, ok := labelSets[code]; ok {
		set = static
	}

	out := card.DecisionCard{
		Verdict:          c.Verdict,
		WhyThisMatters:   append([]string(nil), c.WhyThisMatters...),
		WhyYouMightCare:  append([]string(nil), c.WhyYouMightCare...),
		Confidence:       c.Confidence,
		Uncertainty:      c.Uncertainty,
		BetterChoiceHint: append([]string(nil), c.BetterChoiceHint...),
		Closure:          c.Closure,
	}
	if table, ok := verdictTables[code]; ok {
		if translated, ok := table[c.Verdict]; ok {
			out.Verdict = translated
		}
	}

	return Localized{Language: code, Labels: set, Card: out}
}

// FormatLocalized renders the localized card with its LabelSet headings in
// the exact canonical layout. With English labels this is byte-identical to
// card.Format.
func FormatLocalized(l Localized) string {
	c := l.Card
	var lines []string
	lines = append(lines, card.Delimiter)
	lines = append(lines, l.Labels.DecisionCard)
	lines = append(lines, "")
	lines = append(lines, l.Labels.Verdict+" "+c.Verdict)
	lines = append(lines, "")
	lines = append(lines, l.Labels.WhyThisMatters)
	for i, reason := range c.WhyThisMatters {
		if i >= 2 {
			break
		}
		lines = append(lines, card.Bullet+reason)
	}
	lines = append(lines, "")
	lines = append(lines, l.Labels.WhyYouMightCare)
	if len(c.WhyYouMightCare) > 0 {
		lines = append(lines, card.Bullet+c.WhyYouMightCare[0])
	}
	lines = append(lines, "")
	lines = append(lines, l.Labels.Confidence)
	lines = append(lines, fmt.Sprintf("%d%%", c.Confidence))
	lines = append(lines, "")
	lines = append(lines, l.Labels.Uncertainty)
	lines = append(lines, card.Bullet+c.Uncertainty)
	if len(c.BetterChoiceHint) > 0 {
		lines = append(lines, "")
		lines = append(lines, l.Labels.BetterChoiceHint)
		lines = append(lines, card.Bullet+c.BetterChoiceHint[0])
	}
	lines = append(lines, "")
	lines = append(lines, l.Labels.Closure)
	lines = append(lines, card.Bullet+c.Closure)
	lines = append(lines, card.Delimiter)
	return strings.Join(lines, "\n")
}
