package ai

import (
	"context"
	"errors"
	"strings"
)

// Provider is a text-generation backend. Two concrete variants exist: the
// chat-completion envelope (ChatProvider) and the generate-content envelope
// (GeminiProvider). The producer depends only on this capability.
type Provider interface {
	// Name identifies the backend ("openai" or "gemini") for logs and the
	// debug endpoint.
	Name() string
	// Model returns the currently active model id. It may change once if
	// auto-discovery replaces a rejected model.
	Model() string
	// Generate sends one system+user prompt pair and returns the raw text.
	// Failures surface as *ProviderError when a status is known.
	Generate(ctx context.Context, system, user string) (string, error)
}

// isModelNotFound reports whether the error means the configured model id
// was rejected by the provider, which triggers one-time auto-discovery.
func isModelNotFound(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	if perr.Status == 404 {
		return true
	}
	msg := strings.ToLower(perr.Message)
	if !strings.Contains(msg, "model") {
		return false
	}
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "decommissioned") ||
		strings.Contains(msg, "not supported")
}

// preferModel picks a replacement model id from a discovery listing. Small
// fast models are preferred; otherwise the first candidate wins.
func preferModel(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	for _, hint := range []string{"flash", "mini", "instant"} {
		for _, id := range candidates {
			if strings.Contains(strings.ToLower(id), hint) {
				return id
			}
		}
	}
	return candidates[0]
}
