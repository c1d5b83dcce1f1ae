package card

import (
	"regexp"
	"strconv"
	"strings"
)

var confidenceRe = regexp.MustCompile(`^(\d{1,3})%$`)

// isDelimiter reports whether the line is a card delimiter. The canonical
// delimiter is 50 dashes but generators occasionally shorten it, so any
// dash-only run of at least ten characters counts.
func isDelimiter(line string) bool {
	if len(line) < 10 {
		return false
	}
	for _, r := range line {
		if r != '-' {
			return false
		}
	}
	return true
}

func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "•")
	return strings.TrimSpace(line)
}

// Parse extracts a DecisionCard from canonical card text. It returns ok=false
// on any structural mismatch: missing heading, bad verdict token, bad
// confidence value, or an empty required reason list. Extra bullets beyond a
// section's cap are dropped, mirroring Format's truncation.
func Parse(text string) (*DecisionCard, bool) {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	titleAt := -1
	for i, line := range lines {
		if line == HeadingTitle {
			titleAt = i
			break
		}
	}
	if titleAt < 0 {
		return nil, false
	}

	sections := make(map[string][]string)
	verdict := ""
	sawVerdict := false
	current := ""
	for _, line := range lines[titleAt+1:] {
		switch {
		case line == "":
			continue
		case isDelimiter(line):
			current = ""
		case strings.HasPrefix(line, HeadingVerdict):
			verdict = strings.TrimSpace(strings.TrimPrefix(line, HeadingVerdict))
			sawVerdict = true
			current = ""
		case line == HeadingMatters:
			current = HeadingMatters
		case line == HeadingCare:
			current = HeadingCare
		case line == HeadingConfidence:
			current = HeadingConfidence
		case line == HeadingUncertainty:
			current = HeadingUncertainty
		case strings.HasPrefix(line, "Better choice hint"):
			current = HeadingHint
		case line == HeadingClosure:
			current = HeadingClosure
		default:
			if current != "" {
				sections[current] = append(sections[current], line)
			}
		}
	}

	if !sawVerdict || !ValidVerdict(verdict) {
		return nil, false
	}

	matters := bulletList(sections[HeadingMatters], 2)
	if len(matters) == 0 {
		return nil, false
	}
	care := bulletList(sections[HeadingCare], 1)
	if len(care) != 1 {
		return nil, false
	}

	confLines, ok := sections[HeadingConfidence]
	if !ok || len(confLines) == 0 {
		return nil, false
	}
	m := confidenceRe.FindStringSubmatch(confLines[0])
	if m == nil {
		return nil, false
	}
	confidence, err := strconv.Atoi(m[1])
	if err != nil || confidence < ConfidenceMin || confidence > ConfidenceMax {
		return nil, false
	}

	uncertainty := bulletList(sections[HeadingUncertainty], 1)
	if len(uncertainty) != 1 {
		return nil, false
	}
	closure := bulletList(sections[HeadingClosure], 1)
	if len(closure) != 1 {
		return nil, false
	}
	hint := bulletList(sections[HeadingHint], 1)

	return &DecisionCard{
		Verdict:          verdict,
		WhyThisMatters:   matters,
		WhyYouMightCare:  care,
		Confidence:       confidence,
		Uncertainty:      uncertainty[0],
		BetterChoiceHint: hint,
		Closure:          closure[0],
	}, true
}

// bulletList strips bullet markers, drops empties, and caps the list length.
func bulletList(lines []string, limit int) []string {
	var out []string
	for _, line := range lines {
		text := stripBullet(line)
		if text == "" {
			continue
		}
		out = append(out, text)
		if len(out) == limit {
			break
		}
	}
	return out
}
