// Package ai orchestrates decision-card generation against an external
// text-generation provider. The producer drives a bounded retry loop
// (primary, repair, simplify) against the card contract's validator so an
// unreliable free-text generator is forced into the strict wire format.
package ai

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"safeplate/server/internal/card"
)

// Role labels one provider call inside the retry sequence.
type Role string

const (
	RolePrimary  Role = "primary"
	RoleRepair   Role = "repair"
	RoleSimplify Role = "simplify"
)

// maxAttempts bounds provider calls per request: primary, repair, simplify.
const maxAttempts = 3

// Attempt records one provider call. Attempts only drive the retry state
// machine and logging; they are never persisted.
type Attempt struct {
	Provider string
	Model    string
	Role     Role
	Raw      string
	Valid    bool
	Reason   string
}

// Decision is a validated card together with its canonical text.
type Decision struct {
	Card card.DecisionCard
	Text string
}

// Producer generates decision cards through a Provider.
type Producer struct {
	provider Provider
}

// NewProducer wraps a provider backend.
func NewProducer(provider Provider) *Producer {
	return &Producer{provider: provider}
}

// Provider exposes the underlying backend for the debug endpoint.
func (p *Producer) Provider() Provider {
	if p == nil {
		return nil
	}
	return p.provider
}

// Generate produces a validated decision card from scanned label text. It
// makes at most three provider calls and never returns partially-valid
// output: the result is either a card that passed validate+parse, or a
// typed *DecisionError.
func (p *Producer) Generate(ctx context.Context, scannedText string) (*Decision, error) {
	if p == nil || p.provider == nil {
		return nil, ErrDisabled
	}

	attempts := make([]Attempt, 0, maxAttempts)

	raw, err := p.call(ctx, RolePrimary, primaryUserPrompt(scannedText), &attempts)
	if err != nil {
		return nil, p.classify(err)
	}

	text := card.NormalizeGenerated(raw)
	parsed, checkErr := checkCard(text)
	if checkErr != nil {
		attempts[len(attempts)-1].Reason = checkErr.Error()
		logrus.WithFields(logrus.Fields{
			"role":   RolePrimary,
			"reason": checkErr.Error(),
		}).Info("primary card rejected, repairing")

		raw, err = p.call(ctx, RoleRepair, repairUserPrompt(raw), &attempts)
		if err != nil {
			return nil, p.classify(err)
		}
		text = card.NormalizeGenerated(raw)
		parsed, checkErr = checkCard(text)
		if checkErr != nil {
			attempts[len(attempts)-1].Reason = checkErr.Error()
			return nil, &DecisionError{Reason: "AI output failed validation after repair: " + checkErr.Error()}
		}
	}
	attempts[len(attempts)-1].Valid = true

	if len(attempts) < maxAttempts && ComplexityScore(text) >= complexityThreshold {
		simplified, err := p.call(ctx, RoleSimplify, simplifyUserPrompt(text), &attempts)
		if err != nil {
			// A valid card is already in hand; a failed simplify pass
			// degrades to the unsimplified card.
			logrus.WithError(err).Warn("simplify pass failed, keeping valid card")
		} else {
			simpleText := card.NormalizeGenerated(simplified)
			if simpleParsed, simpleErr := checkCard(simpleText); simpleErr == nil {
				attempts[len(attempts)-1].Valid = true
				parsed, text = simpleParsed, simpleText
			} else {
				attempts[len(attempts)-1].Reason = simpleErr.Error()
				logrus.WithField("reason", simpleErr.Error()).Info("simplified card rejected, keeping valid card")
			}
		}
	}

	return &Decision{Card: *parsed, Text: text}, nil
}

// call performs one provider round trip and records the attempt.
func (p *Producer) call(ctx context.Context, role Role, user string, attempts *[]Attempt) (string, error) {
	raw, err := p.provider.Generate(ctx, decisionSystemPrompt, user)
	attempt := Attempt{
		Provider: p.provider.Name(),
		Model:    p.provider.Model(),
		Role:     role,
		Raw:      raw,
	}
	if err != nil {
		attempt.Reason = err.Error()
	}
	*attempts = append(*attempts, attempt)
	logrus.WithFields(logrus.Fields{
		"provider": attempt.Provider,
		"model":    attempt.Model,
		"role":     role,
		"failed":   err != nil,
	}).Debug("generation attempt")
	return raw, err
}

// checkCard runs the two-stage contract check: the cheap regex validator
// first, then the structural parse. A parse failure after a clean validate
// points at a validator gap and is logged as such.
func checkCard(normalized string) (*card.DecisionCard, error) {
	if err := card.Validate(normalized); err != nil {
		return nil, err
	}
	parsed, ok := card.Parse(normalized)
	if !ok {
		logrus.Warn("card passed validation but failed structural parse")
		return nil, &card.InvalidFormatError{Reason: "structural parse failed"}
	}
	return parsed, nil
}

// classify converts provider failures into the producer's typed error,
// deriving status and retry-after where possible.
func (p *Producer) classify(err error) error {
	if errors.Is(err, ErrMissingCredentials) {
		return &DecisionError{Reason: "AI credentials missing"}
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		if perr.RateLimited() {
			wait := RetryAfterSeconds(perr.Message)
			if wait <= 0 {
				wait = 30
			}
			return &DecisionError{
				Reason:            "AI rate limited",
				Status:            429,
				RetryAfterSeconds: wait,
			}
		}
		return &DecisionError{
			Reason: "AI request failed: " + perr.Message,
			Status: perr.Status,
		}
	}
	return &DecisionError{Reason: "AI request failed: " + err.Error()}
}
