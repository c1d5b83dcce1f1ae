package ai

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrDisabled is returned when no generative provider is configured.
var ErrDisabled = errors.New("ai decision producer disabled")

// ErrMissingCredentials signals a provider constructed without an API key.
var ErrMissingCredentials = errors.New("generative provider credentials missing")

// ProviderError is a provider failure classified by HTTP status. Both
// backend envelopes are normalized into this one shape so the producer never
// branches on provider-specific field paths.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, e.Message)
}

// RateLimited reports whether the failure is a rate-limit or quota response.
// Some providers return quota exhaustion with a non-429 status, so the
// message is inspected too.
func (e *ProviderError) RateLimited() bool {
	if e.Status == 429 {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit")
}

// DecisionError is the typed failure the producer surfaces when no attempt
// yields a valid card. Status and RetryAfterSeconds are populated when they
// can be derived from the provider response.
type DecisionError struct {
	Reason            string
	Status            int
	RetryAfterSeconds int
}

func (e *DecisionError) Error() string {
	return e.Reason
}

// RateLimited reports whether the caller should back off.
func (e *DecisionError) RateLimited() bool {
	return e.Status == 429
}

// TranslationError marks a failed translation pass. Callers degrade to the
// untranslated card instead of failing the request.
type TranslationError struct {
	Language string
	Reason   string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate to %s: %s", e.Language, e.Reason)
}

var retryAfterRe = regexp.MustCompile(`(?i)retry(?:\s+again)?\s+(?:in|after)\s+(?:about\s+)?(\d+(?:\.\d+)?)\s*s`)

// RetryAfterSeconds extracts a retry-after duration from a provider error
// message such as "please retry in 12s". Fractional seconds round up.
// Returns 0 when no duration is present.
func RetryAfterSeconds(message string) int {
	m := retryAfterRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}
