// Package lang resolves and normalizes the language of scanned label text.
//
// Resolution is script-based: it counts characters per Indic writing system
// using the Unicode script tables and picks the dominant one. Latin input
// (or anything too short to call) resolves to English.
package lang

import (
	"strings"
	"unicode"
)

// Default is returned whenever no supported script dominates the input.
const Default = "en"

// scriptThreshold is the minimum number of script characters required to
// override the English default. Keeps short stray glyphs from flipping the
// language of an otherwise-Latin scan.
const scriptThreshold = 6

type scriptRange struct {
	code   string
	script *unicode.RangeTable
}

// Ordered so ties resolve deterministically. Devanagari covers Hindi,
// Marathi, Sanskrit, Maithili and Dogri; the Arabic script covers Urdu,
// Sindhi and Kashmiri. Script-level detection cannot tell those apart, so
// each script maps to its most common code.
var scriptRanges = []scriptRange{
	{"hi", unicode.Devanagari},
	{"bn", unicode.Bengali},
	{"pa", unicode.Gurmukhi},
	{"gu", unicode.Gujarati},
	{"or", unicode.Oriya},
	{"ta", unicode.Tamil},
	{"te", unicode.Telugu},
	{"kn", unicode.Kannada},
	{"ml", unicode.Malayalam},
	{"ur", unicode.Arabic},
	{"mni-Mtei", unicode.Meetei_Mayek},
	{"sat", unicode.Ol_Chiki},
}

// supported lists every language code the server understands. India's
// scheduled languages plus the English fallback.
var supported = []string{
	"en", "as", "bn", "brx", "doi", "gu", "hi", "kn", "ks", "kok", "mai",
	"ml", "mni-Mtei", "mr", "ne", "or", "pa", "sa", "sat", "sd", "ta",
	"te", "ur",
}

var names = map[string]string{
	"as":       "Assamese",
	"bn":       "Bengali",
	"brx":      "Bodo",
	"doi":      "Dogri",
	"gu":       "Gujarati",
	"hi":       "Hindi",
	"kn":       "Kannada",
	"ks":       "Kashmiri",
	"kok":      "Konkani",
	"mai":      "Maithili",
	"ml":       "Malayalam",
	"mni-Mtei": "Meitei (Manipuri)",
	"mr":       "Marathi",
	"ne":       "Nepali",
	"or":       "Odia",
	"pa":       "Punjabi",
	"sa":       "Sanskrit",
	"sat":      "Santali",
	"sd":       "Sindhi",
	"ta":       "Tamil",
	"te":       "Telugu",
	"ur":       "Urdu",
	"en":       "English",
}

// Resolve infers a language code from raw scanned text by majority vote
// across Unicode scripts. It always returns a value and never fails.
func Resolve(rawText string) string {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Default
	}

	bestCode := Default
	bestCount := 0
	for _, sr := range scriptRanges {
		count := 0
		for _, r := range text {
			if unicode.Is(sr.script, r) {
				count++
			}
		}
		if count > bestCount {
			bestCode = sr.code
			bestCount = count
		}
	}

	if bestCount >= scriptThreshold {
		return bestCode
	}
	return Default
}

// Normalize collapses a requested language tag to a supported code.
// Exact matches win (so "mni-Mtei" survives); otherwise the base language
// before any regional suffix is tried; unrecognized tags fall back to "en".
func Normalize(language string) string {
	tag := strings.TrimSpace(language)
	if tag == "" {
		return Default
	}
	for _, code := range supported {
		if strings.EqualFold(code, tag) {
			return code
		}
	}
	parts := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(parts) == 0 {
		return Default
	}
	base := strings.ToLower(parts[0])
	for _, code := range supported {
		if code == base {
			return code
		}
	}
	return Default
}

// Name returns the human-readable language name used in translation prompts.
func Name(code string) string {
	if name, ok := names[strings.TrimSpace(code)]; ok {
		return name
	}
	return "the selected language"
}

// Supported reports whether the given code is in the supported set.
func Supported(code string) bool {
	for _, c := range supported {
		if c == code {
			return true
		}
	}
	return false
}
