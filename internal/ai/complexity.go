package ai

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// complexityThreshold triggers the single simplify pass.
const complexityThreshold = 3

var bracketRe = regexp.MustCompile(`[(){}\[\]]`)

var technicalSuffixes = []string{"ate", "ite", "ide", "ose", "ium"}

// ComplexityScore is a cheap proxy for "sounds chemical or jargon-heavy":
// brackets, very long words, and chemistry-flavored suffixes all push a card
// toward one simplification pass.
func ComplexityScore(text string) int {
	score := 0
	if bracketRe.MatchString(text) {
		score += 2
	}

	longWords := 0
	suffixWords := 0
	for _, token := range strings.Fields(text) {
		// Trimming dashes also drops the card's delimiter lines, which
		// would otherwise count as long words.
		word := strings.ToLower(strings.Trim(token, ".,;:!•\"'()[]{}-"))
		if word == "" {
			continue
		}
		if utf8.RuneCountInString(word) >= 15 {
			longWords++
		}
		for _, suffix := range technicalSuffixes {
			if strings.HasSuffix(word, suffix) {
				suffixWords++
				break
			}
		}
	}
	if longWords > 6 {
		longWords = 6
	}
	if suffixWords > 4 {
		suffixWords = 4
	}
	return score + longWords + suffixWords
}
