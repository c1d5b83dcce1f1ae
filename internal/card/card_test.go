package card

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCard() DecisionCard {
	return DecisionCard{
		Verdict: VerdictOkayOccasionally,
		WhyThisMatters: []string{
			"It reads like a more processed packaged item, which is usually best kept occasional.",
			"It likely leans sweeter than an everyday choice.",
		},
		WhyYouMightCare: []string{
			"If you're choosing something often, picking a less processed option usually feels better.",
		},
		Confidence:  76,
		Uncertainty: "Scan may be incomplete or misread.",
		BetterChoiceHint: []string{
			"For regular use, pick options that are less sweet and less processed.",
		},
		Closure: "You're okay enjoying this occasionally.",
	}
}

func TestFormatLayout(t *testing.T) {
	text := Format(sampleCard())
	lines := strings.Split(text, "\n")

	require.Equal(t, Delimiter, lines[0])
	require.Equal(t, Delimiter, lines[len(lines)-1])
	assert.Equal(t, HeadingTitle, lines[1])
	assert.Contains(t, text, HeadingVerdict+" "+VerdictOkayOccasionally)
	assert.Contains(t, text, "76%")

	for _, line := range lines {
		if strings.HasPrefix(line, "•") {
			assert.True(t, strings.HasPrefix(line, Bullet), "bullet prefix must be %q: %q", Bullet, line)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	cards := []DecisionCard{
		sampleCard(),
		{
			Verdict:         VerdictSafe,
			WhyThisMatters:  []string{"Nothing obvious in the scan suggests a frequent-limit kind of item."},
			WhyYouMightCare: []string{"If you're trying to keep everyday choices simple, this looks compatible."},
			Confidence:      78,
			Uncertainty:     "Scan may be incomplete or misread.",
			Closure:         "Go ahead and enjoy it.",
		},
		{
			Verdict:          VerdictBetterToAvoid,
			WhyThisMatters:   []string{"It reads like a heavily processed packaged item.", "It likely leans much sweeter than an everyday choice."},
			WhyYouMightCare:  []string{"Frequent picks shape how you feel day to day."},
			Confidence:       50,
			Uncertainty:      "The scan could be missing part of the label.",
			BetterChoiceHint: []string{"For regular use, pick simpler options."},
			Closure:          "You might want to skip this if you're choosing often.",
		},
	}

	for _, c := range cards {
		t.Run(c.Verdict, func(t *testing.T) {
			parsed, ok := Parse(Format(c))
			require.True(t, ok)
			assert.Equal(t, &c, parsed)
		})
	}
}

func TestParseRejects(t *testing.T) {
	base := sampleCard()
	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{"empty", func(string) string { return "" }},
		{"missing title", func(s string) string { return strings.Replace(s, HeadingTitle, "SOME CARD", 1) }},
		{"bad verdict", func(s string) string {
			return strings.Replace(s, VerdictOkayOccasionally, "Probably Fine", 1)
		}},
		{"confidence too low", func(s string) string { return strings.Replace(s, "76%", "20%", 1) }},
		{"confidence too high", func(s string) string { return strings.Replace(s, "76%", "95%", 1) }},
		{"confidence not a percent", func(s string) string { return strings.Replace(s, "76%", "high", 1) }},
		{"no matters reasons", func(s string) string {
			lines := strings.Split(s, "\n")
			var out []string
			skip := false
			for _, line := range lines {
				if line == HeadingMatters {
					skip = true
					out = append(out, line)
					continue
				}
				if skip && strings.HasPrefix(line, Bullet) {
					continue
				}
				skip = false
				out = append(out, line)
			}
			return strings.Join(out, "\n")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Parse(tc.mutate(Format(base)))
			assert.False(t, ok)
		})
	}
}

func TestParseDropsExtraBullets(t *testing.T) {
	text := Format(sampleCard())
	text = strings.Replace(text, HeadingMatters, HeadingMatters+"\n"+Bullet+"First extra reason.", 1)

	parsed, ok := Parse(text)
	require.True(t, ok)
	assert.Len(t, parsed.WhyThisMatters, 2)
}
