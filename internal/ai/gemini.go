package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiConfig holds configuration for the generate-content backend.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// GeminiProvider implements Provider against the Gemini generate-content
// API. The envelope differs from chat completions (system instruction is a
// model attribute, output arrives as content parts) but errors normalize
// into the same *ProviderError shape.
type GeminiProvider struct {
	client      *genai.Client
	temperature float32

	mu         sync.Mutex
	model      string
	discovered bool
}

// NewGeminiProvider constructs a GeminiProvider if the configuration is valid.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.2
	}
	return &GeminiProvider{
		client:      client,
		temperature: float32(temp),
		model:       model,
	}, nil
}

// Name identifies the backend.
func (p *GeminiProvider) Name() string { return "gemini" }

// Model returns the currently active model id.
func (p *GeminiProvider) Model() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

// Close releases the underlying API client.
func (p *GeminiProvider) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Generate sends one generate-content request. A model-not-found response
// triggers one-time model discovery followed by a single retry.
func (p *GeminiProvider) Generate(ctx context.Context, system, user string) (string, error) {
	text, err := p.generate(ctx, system, user)
	if err != nil && isModelNotFound(err) && p.discoverModel(ctx) {
		return p.generate(ctx, system, user)
	}
	return text, err
}

func (p *GeminiProvider) generate(ctx context.Context, system, user string) (string, error) {
	model := p.client.GenerativeModel(p.Model())
	model.SetTemperature(p.temperature)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", p.normalizeError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty generate content response")
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text parts in generate content response")
	}
	return strings.Join(parts, ""), nil
}

// normalizeError maps SDK failures to *ProviderError so the producer sees
// the same status-driven classification as the chat backend.
func (p *GeminiProvider) normalizeError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &ProviderError{Provider: p.Name(), Status: gerr.Code, Message: gerr.Message}
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted") || strings.Contains(lower, "rate limit") {
		return &ProviderError{Provider: p.Name(), Status: 429, Message: msg}
	}
	if strings.Contains(lower, "not found") && strings.Contains(lower, "model") {
		return &ProviderError{Provider: p.Name(), Status: 404, Message: msg}
	}
	return fmt.Errorf("generate content request: %w", err)
}

// discoverModel lists available models once per provider lifetime and swaps
// in one that supports generateContent. Returns true when the active model
// changed.
func (p *GeminiProvider) discoverModel(ctx context.Context) bool {
	p.mu.Lock()
	if p.discovered {
		p.mu.Unlock()
		return false
	}
	p.discovered = true
	previous := p.model
	p.mu.Unlock()

	var candidates []string
	it := p.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logrus.WithError(err).Warn("gemini model discovery failed")
			return false
		}
		if !supportsGenerateContent(info) {
			continue
		}
		candidates = append(candidates, strings.TrimPrefix(info.Name, "models/"))
	}

	replacement := preferModel(candidates)
	if replacement == "" || replacement == previous {
		return false
	}

	p.mu.Lock()
	p.model = replacement
	p.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"previous": previous,
		"model":    replacement,
	}).Info("gemini model replaced after not-found response")
	return true
}

func supportsGenerateContent(info *genai.ModelInfo) bool {
	if info == nil {
		return false
	}
	for _, method := range info.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}
