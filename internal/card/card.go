// Package card defines the decision-card contract: the structured card, its
// canonical textual rendering, the parser, and the content-safety validator.
//
// The textual layout is a bit-exact wire contract. Consumers parse it by
// section heading, so Format and Parse must round-trip exactly.
package card

import (
	"fmt"
	"strings"
)

// Verdict tokens. These exact strings appear on the Verdict line.
const (
	VerdictSafe             = "Safe"
	VerdictOkayOccasionally = "Okay Occasionally"
	VerdictBetterToAvoid    = "Better to Avoid"
)

// Confidence bounds for any decision card.
const (
	ConfidenceMin = 50
	ConfidenceMax = 90
)

// Section headings of the canonical rendering, in order.
const (
	HeadingTitle       = "DECISION CARD"
	HeadingVerdict     = "Verdict:"
	HeadingMatters     = "Why this matters:"
	HeadingCare        = "Why you might care:"
	HeadingConfidence  = "Confidence:"
	HeadingUncertainty = "Uncertainty:"
	HeadingHint        = "Better choice hint (optional, non-pushy):"
	HeadingClosure     = "Closure:"
)

// Delimiter wraps the card text top and bottom.
var Delimiter = strings.Repeat("-", 50)

// Bullet prefixes every list line in the rendering.
const Bullet = "• "

// DecisionCard is the structured form of a decision card. Once validated it
// is treated as immutable; localization produces a new presentation object
// instead of mutating it.
type DecisionCard struct {
	Verdict          string   `json:"verdict"`
	WhyThisMatters   []string `json:"whyThisMatters"`
	WhyYouMightCare  []string `json:"whyYouMightCare"`
	Confidence       int      `json:"confidence"`
	Uncertainty      string   `json:"uncertainty"`
	BetterChoiceHint []string `json:"betterChoiceHint,omitempty"`
	Closure          string   `json:"closure"`
}

// ValidVerdict reports whether the token is one of the three canonical values.
func ValidVerdict(v string) bool {
	switch v {
	case VerdictSafe, VerdictOkayOccasionally, VerdictBetterToAvoid:
		return true
	}
	return false
}

// ClampConfidence forces a confidence value into the contract range.
func ClampConfidence(n int) int {
	if n < ConfidenceMin {
		return ConfidenceMin
	}
	if n > ConfidenceMax {
		return ConfidenceMax
	}
	return n
}

// Format renders the card in the canonical layout. Required sections are
// always emitted; the hint section is omitted only when its list is empty.
func Format(c DecisionCard) string {
	var lines []string
	lines = append(lines, Delimiter)
	lines = append(lines, HeadingTitle)
	lines = append(lines, "")
	lines = append(lines, HeadingVerdict+" "+c.Verdict)
	lines = append(lines, "")
	lines = append(lines, HeadingMatters)
	for i, reason := range c.WhyThisMatters {
		if i >= 2 {
			break
		}
		lines = append(lines, Bullet+reason)
	}
	lines = append(lines, "")
	lines = append(lines, HeadingCare)
	if len(c.WhyYouMightCare) > 0 {
		lines = append(lines, Bullet+c.WhyYouMightCare[0])
	}
	lines = append(lines, "")
	lines = append(lines, HeadingConfidence)
	lines = append(lines, fmt.Sprintf("%d%%", c.Confidence))
	lines = append(lines, "")
	lines = append(lines, HeadingUncertainty)
	lines = append(lines, Bullet+c.Uncertainty)
	if len(c.BetterChoiceHint) > 0 {
		lines = append(lines, "")
		lines = append(lines, HeadingHint)
		lines = append(lines, Bullet+c.BetterChoiceHint[0])
	}
	lines = append(lines, "")
	lines = append(lines, HeadingClosure)
	lines = append(lines, Bullet+c.Closure)
	lines = append(lines, Delimiter)
	return strings.Join(lines, "\n")
}
