package card

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// InvalidFormatError reports generator output whose shape does not match the
// contract. The repair pass can usually recover from these.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return "invalid card format: " + e.Reason
}

// ContentPolicyError reports generator output that leaks banned content:
// ingredient echoes, additive codes, numerals or percentages outside the
// confidence line, or question marks.
type ContentPolicyError struct {
	Reason string
}

func (e *ContentPolicyError) Error() string {
	return "content policy violation: " + e.Reason
}

var (
	digitRe        = regexp.MustCompile(`\d`)
	additiveCodeRe = regexp.MustCompile(`(?i)\b(?:e|ins)[-\s]?\d{3}\b`)
)

// NormalizeGenerated prepares raw generator output for validation and
// parsing: code-fence markers are stripped, bullet variants are folded to
// the canonical "• " prefix, and the text is trimmed to the last
// delimiter-bounded block when delimiters are present.
func NormalizeGenerated(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "- "):
			trimmed = Bullet + strings.TrimSpace(trimmed[len("- "):])
		case strings.HasPrefix(trimmed, "* "):
			trimmed = Bullet + strings.TrimSpace(trimmed[len("* "):])
		case strings.HasPrefix(trimmed, "•"):
			trimmed = Bullet + strings.TrimSpace(strings.TrimPrefix(trimmed, "•"))
		}
		out = append(out, trimmed)
	}

	last := -1
	for i, line := range out {
		if isDelimiter(line) {
			last = i
		}
	}
	if last > 0 {
		start := -1
		for i := last - 1; i >= 0; i-- {
			if isDelimiter(out[i]) {
				start = i
				break
			}
		}
		if start >= 0 {
			out = out[start : last+1]
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Validate runs the strict pre-parse check on normalized generator output.
// It returns nil when the text is safe to parse, an *InvalidFormatError when
// the shape is wrong, and a *ContentPolicyError when banned content appears.
// Content checks run first: a card that leaks numbers is unsafe no matter
// how well-formed it is.
func Validate(normalized string) error {
	text := strings.TrimSpace(normalized)
	if text == "" {
		return &InvalidFormatError{Reason: "empty output"}
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	if strings.Contains(strings.ToLower(text), "ingredients:") {
		return &ContentPolicyError{Reason: "ingredient list echo"}
	}
	if additiveCodeRe.MatchString(text) {
		return &ContentPolicyError{Reason: "additive classification code"}
	}

	confidenceValueLine := false
	for _, line := range lines {
		if strings.Contains(line, "?") {
			return &ContentPolicyError{Reason: "question mark in output"}
		}
		if line == HeadingConfidence {
			confidenceValueLine = true
			continue
		}
		if confidenceValueLine && line != "" {
			// The single confidence value line is the only place digits
			// and a percent sign are allowed.
			confidenceValueLine = false
			continue
		}
		if digitRe.MatchString(line) {
			return &ContentPolicyError{Reason: "numeral outside confidence line"}
		}
		if strings.Contains(line, "%") {
			return &ContentPolicyError{Reason: "percentage outside confidence line"}
		}
	}

	required := []string{
		HeadingTitle,
		HeadingMatters,
		HeadingCare,
		HeadingConfidence,
		HeadingUncertainty,
		HeadingClosure,
	}
	for _, heading := range required {
		if !containsLine(lines, heading) {
			return &InvalidFormatError{Reason: fmt.Sprintf("missing %q section", heading)}
		}
	}

	verdict := ""
	for _, line := range lines {
		if strings.HasPrefix(line, HeadingVerdict) {
			verdict = strings.TrimSpace(strings.TrimPrefix(line, HeadingVerdict))
			break
		}
	}
	if verdict == "" {
		return &InvalidFormatError{Reason: "missing verdict line"}
	}
	if !ValidVerdict(verdict) {
		return &InvalidFormatError{Reason: fmt.Sprintf("unknown verdict %q", verdict)}
	}

	conf, ok := confidenceValue(lines)
	if !ok {
		return &InvalidFormatError{Reason: "missing confidence value"}
	}
	if conf < ConfidenceMin || conf > ConfidenceMax {
		return &InvalidFormatError{Reason: fmt.Sprintf("confidence %d out of range", conf)}
	}

	return nil
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}

func confidenceValue(lines []string) (int, bool) {
	for i, line := range lines {
		if line != HeadingConfidence {
			continue
		}
		for _, next := range lines[i+1:] {
			if next == "" {
				continue
			}
			m := confidenceRe.FindStringSubmatch(next)
			if m == nil {
				return 0, false
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}
