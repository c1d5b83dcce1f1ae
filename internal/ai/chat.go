package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ChatConfig holds configuration for an OpenAI-compatible backend.
type ChatConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// ChatProvider implements Provider against an OpenAI-compatible
// chat-completions endpoint.
type ChatProvider struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	temperature float64

	mu         sync.Mutex
	model      string
	discovered bool
}

// NewChatProvider constructs a ChatProvider if the configuration is valid.
func NewChatProvider(cfg ChatConfig) (*ChatProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatProvider{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     baseURL,
		temperature: temp,
		model:       model,
	}, nil
}

// Name identifies the backend.
func (p *ChatProvider) Name() string { return "openai" }

// Model returns the currently active model id.
func (p *ChatProvider) Model() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model
}

// Generate sends one chat-completion request. A model-not-found response
// triggers one-time model discovery followed by a single retry.
func (p *ChatProvider) Generate(ctx context.Context, system, user string) (string, error) {
	text, err := p.complete(ctx, system, user)
	if err != nil && isModelNotFound(err) && p.discoverModel(ctx) {
		return p.complete(ctx, system, user)
	}
	return text, err
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *ChatProvider) complete(ctx context.Context, system, user string) (string, error) {
	payload := map[string]any{
		"model":       p.Model(),
		"temperature": p.temperature,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr chatErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return "", &ProviderError{
			Provider: p.Name(),
			Status:   resp.StatusCode,
			Message:  apiErr.Error.Message,
		}
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("empty chat completion response")
	}
	return decoded.Choices[0].Message.Content, nil
}

type modelListResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// discoverModel lists the backend's models once per provider lifetime and
// swaps in a usable id. Returns true when the active model changed.
func (p *ChatProvider) discoverModel(ctx context.Context) bool {
	p.mu.Lock()
	if p.discovered {
		p.mu.Unlock()
		return false
	}
	p.discovered = true
	previous := p.model
	p.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("chat model discovery failed")
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Warn("chat model discovery rejected")
		return false
	}

	var listing modelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return false
	}
	candidates := make([]string, 0, len(listing.Data))
	for _, m := range listing.Data {
		if strings.TrimSpace(m.ID) != "" {
			candidates = append(candidates, m.ID)
		}
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
	}).Info("chat model replaced after not-found response")
	return true
}
