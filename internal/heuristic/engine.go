// Package heuristic implements the offline decision engine. It scores broad
// category signals in normalized scan text and never calls the network,
// which makes it the guaranteed-available fallback when the generative path
// is disabled, rate limited, or produces unusable output.
package heuristic

import (
	"regexp"
	"strings"

	"safeplate/server/internal/card"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Category signal sets. These deliberately stay at category level: the
// engine must never echo a matched keyword back to the user.
var (
	ultraProcessedSignals = []*regexp.Regexp{
		regexp.MustCompile(`artificial\s+flavou?r`),
		regexp.MustCompile(`artificial\s+sweeten`),
		regexp.MustCompile(`flavou?r\s+enhancer`),
		regexp.MustCompile(`emulsifier`),
		regexp.MustCompile(`stabilizer`),
		regexp.MustCompile(`thickener`),
		regexp.MustCompile(`preservative`),
		regexp.MustCompile(`colour|color`),
		regexp.MustCompile(`hydrogenated`),
	}

	sweetnessSignals = []*regexp.Regexp{
		regexp.MustCompile(`sugar`),
		regexp.MustCompile(`syrup`),
		regexp.MustCompile(`glucose`),
		regexp.MustCompile(`fructose`),
		regexp.MustCompile(`maltodextrin`),
		regexp.MustCompile(`honey`),
	}

	saltSignals = []*regexp.Regexp{
		regexp.MustCompile(`salt`),
		regexp.MustCompile(`sodium`),
	}

	refinedFatSignals = []*regexp.Regexp{
		regexp.MustCompile(`palm\s+oil`),
		regexp.MustCompile(`vegetable\s+oil`),
		regexp.MustCompile(`shortening`),
	}

	allergenMentionSignals = []*regexp.Regexp{
		regexp.MustCompile(`contains`),
		regexp.MustCompile(`allergen`),
		regexp.MustCompile(`may\s+contain`),
	}

	sensitiveCategorySignals = []*regexp.Regexp{
		regexp.MustCompile(`milk|dairy`),
		regexp.MustCompile(`soy`),
		regexp.MustCompile(`wheat|gluten`),
		regexp.MustCompile(`nuts?|peanut`),
		regexp.MustCompile(`egg`),
		regexp.MustCompile(`fish|shellfish`),
	}
)

func normalizeInput(scannedText string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(scannedText, " ")))
}

// countOccurrences sums every match of every pattern, so repeated mentions
// of the same signal each count toward the score.
func countOccurrences(text string, patterns []*regexp.Regexp) int {
	total := 0
	for _, p := range patterns {
		total += len(p.FindAllStringIndex(text, -1))
	}
	return total
}

func hasAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Decide derives a decision card from scanned label text. It is a pure
// function: identical normalized input yields an identical card.
func Decide(scannedText string) card.DecisionCard {
	text := normalizeInput(scannedText)

	if text == "" {
		return card.DecisionCard{
			Verdict: card.VerdictOkayOccasionally,
			WhyThisMatters: []string{
				"I can't reliably screen what's in this without a readable scan.",
				"Treating it as occasional is the calm default when details are missing.",
			},
			WhyYouMightCare: []string{
				"Small differences matter most when you eat something often.",
			},
			Confidence:  card.ClampConfidence(55),
			Uncertainty: "No readable label text detected.",
			BetterChoiceHint: []string{
				"For everyday picks, choose simpler, less processed options.",
			},
			Closure: "This is fine to have once in a while.",
		}
	}

	upCount := countOccurrences(text, ultraProcessedSignals)
	sweetCount := countOccurrences(text, sweetnessSignals)
	saltCount := countOccurrences(text, saltSignals)
	fatCount := countOccurrences(text, refinedFatSignals)

	score := upCount*2 + sweetCount*2 + saltCount + fatCount

	verdict := card.VerdictSafe
	confidence := 78
	switch {
	case score >= 7:
		verdict = card.VerdictBetterToAvoid
		confidence = 74
	case score >= 3:
		verdict = card.VerdictOkayOccasionally
		confidence = 76
	}

	// Reasons stay at category level and never cite a matched keyword.
	var why []string
	if upCount >= 2 {
		why = append(why, "It reads like a more processed packaged item, which is usually best kept occasional.")
	}
	if sweetCount >= 2 {
		why = append(why, "It likely leans sweeter than an everyday choice.")
	} else if saltCount >= 2 {
		why = append(why, "It likely leans saltier than an everyday choice.")
	}
	if len(why) == 0 {
		why = append(why, "Nothing obvious in the scan suggests it's a frequent-limit kind of item.")
	}
	if len(why) > 2 {
		why = why[:2]
	}

	care := "If you're choosing something often, picking a less processed option usually feels better."
	if verdict == card.VerdictSafe {
		care = "If you're trying to keep everyday choices simple, this looks compatible."
	}

	// An explicit allergen mention alongside common allergen categories only
	// widens the uncertainty note. It never moves the verdict: that would be
	// medical inference, which this engine refuses to do.
	uncertainty := "Scan may be incomplete or misread."
	if hasAny(text, allergenMentionSignals) && hasAny(text, sensitiveCategorySignals) {
		uncertainty = "Scan may be incomplete or misread. Label appears to mention common allergen categories."
	}

	var hint []string
	if verdict != card.VerdictSafe {
		hint = []string{"For regular use, pick options that are less sweet/salty and less processed."}
	}

	closure := "You're okay enjoying this occasionally."
	switch verdict {
	case card.VerdictSafe:
		closure = "Go ahead and enjoy it."
	case card.VerdictBetterToAvoid:
		closure = "You might want to skip this if you're choosing often."
	}

	return card.DecisionCard{
		Verdict:          verdict,
		WhyThisMatters:   why,
		WhyYouMightCare:  []string{care},
		Confidence:       card.ClampConfidence(confidence),
		Uncertainty:      uncertainty,
		BetterChoiceHint: hint,
		Closure:          closure,
	}
}
