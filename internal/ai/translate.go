package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"safeplate/server/internal/card"
	"safeplate/server/internal/lang"
	"safeplate/server/internal/localize"
)

// translatePayload carries only the free-text fields of a card through the
// translation call. The verdict token and the confidence value never travel:
// the localizer owns verdict mapping and confidence is carried over
// server-side so a mistranslated number can never appear.
type translatePayload struct {
	WhyThisMatters   []string `json:"whyThisMatters"`
	WhyYouMightCare  []string `json:"whyYouMightCare"`
	Uncertainty      string   `json:"uncertainty"`
	BetterChoiceHint []string `json:"betterChoiceHint"`
	Closure          string   `json:"closure"`
}

var unsafeTextRe = regexp.MustCompile(`[\d?]`)

// TranslateCard translates the free-text fields of an English card into the
// target language. On any failure the original card is returned along with a
// *TranslationError; translation never fails the overall request.
func (p *Producer) TranslateCard(ctx context.Context, c card.DecisionCard, language string) (card.DecisionCard, error) {
	code := lang.Normalize(language)
	if code == lang.Default {
		return c, nil
	}
	if p == nil || p.provider == nil {
		return c, &TranslationError{Language: code, Reason: "no provider"}
	}

	payload := translatePayload{
		WhyThisMatters:   capSlice(c.WhyThisMatters, 2),
		WhyYouMightCare:  capSlice(c.WhyYouMightCare, 1),
		Uncertainty:      c.Uncertainty,
		BetterChoiceHint: capSlice(c.BetterChoiceHint, 1),
		Closure:          c.Closure,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return c, &TranslationError{Language: code, Reason: err.Error()}
	}

	raw, err := p.provider.Generate(ctx, translationSystemPrompt(lang.Name(code)), "Translate this JSON:\n"+string(body))
	if err != nil {
		return c, &TranslationError{Language: code, Reason: err.Error()}
	}

	obj := extractFirstJSONObject(raw)
	if obj == "" {
		return c, &TranslationError{Language: code, Reason: "no JSON object in response"}
	}
	var translated translatePayload
	if err := json.Unmarshal([]byte(obj), &translated); err != nil {
		return c, &TranslationError{Language: code, Reason: "invalid JSON from provider"}
	}

	if reason, ok := validateTranslation(payload, translated); !ok {
		return c, &TranslationError{Language: code, Reason: reason}
	}

	out := c
	out.WhyThisMatters = translated.WhyThisMatters
	out.WhyYouMightCare = translated.WhyYouMightCare
	out.Uncertainty = translated.Uncertainty
	out.BetterChoiceHint = translated.BetterChoiceHint
	out.Closure = translated.Closure
	return out, nil
}

// TranslateLabels translates the card's heading labels into the target
// language. Callers cache the result for the process lifetime.
func (p *Producer) TranslateLabels(ctx context.Context, language string) (localize.LabelSet, error) {
	code := lang.Normalize(language)
	empty := localize.LabelSet{}
	if p == nil || p.provider == nil {
		return empty, &TranslationError{Language: code, Reason: "no provider"}
	}

	body, err := json.Marshal(localize.DefaultLabels())
	if err != nil {
		return empty, &TranslationError{Language: code, Reason: err.Error()}
	}
	raw, err := p.provider.Generate(ctx, labelTranslationSystemPrompt(lang.Name(code)), "Translate this JSON:\n"+string(body))
	if err != nil {
		return empty, &TranslationError{Language: code, Reason: err.Error()}
	}

	obj := extractFirstJSONObject(raw)
	if obj == "" {
		return empty, &TranslationError{Language: code, Reason: "no JSON object in response"}
	}
	var labels localize.LabelSet
	if err := json.Unmarshal([]byte(obj), &labels); err != nil {
		return empty, &TranslationError{Language: code, Reason: "invalid JSON from provider"}
	}
	if !labels.Complete() {
		return empty, &TranslationError{Language: code, Reason: "incomplete label set"}
	}
	for _, label := range []string{
		labels.DecisionCard, labels.Verdict, labels.WhyThisMatters,
		labels.WhyYouMightCare, labels.Confidence, labels.Uncertainty,
		labels.BetterChoiceHint, labels.Closure,
	} {
		if unsafeTextRe.MatchString(label) {
			return empty, &TranslationError{Language: code, Reason: "unsafe characters in labels"}
		}
	}
	return labels, nil
}

// validateTranslation checks the translated payload field by field: same
// array lengths, nothing empty, no digits, no question marks.
func validateTranslation(original, translated translatePayload) (string, bool) {
	if len(translated.WhyThisMatters) != len(original.WhyThisMatters) ||
		len(translated.WhyYouMightCare) != len(original.WhyYouMightCare) ||
		len(translated.BetterChoiceHint) != len(original.BetterChoiceHint) {
		return "array length changed", false
	}
	fields := []string{translated.Uncertainty, translated.Closure}
	fields = append(fields, translated.WhyThisMatters...)
	fields = append(fields, translated.WhyYouMightCare...)
	fields = append(fields, translated.BetterChoiceHint...)
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return "empty field", false
		}
		if unsafeTextRe.MatchString(field) {
			return "digits or question marks in translation", false
		}
	}
	return "", true
}

// extractFirstJSONObject returns the first balanced {...} block in the text,
// or "" when none closes.
func extractFirstJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func capSlice(in []string, limit int) []string {
	if len(in) <= limit {
		return append([]string(nil), in...)
	}
	return append([]string(nil), in[:limit]...)
}
