package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
}

func TestChatProviderGenerate(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotModel = payload.Model
		require.Len(t, payload.Messages, 2)
		require.Equal(t, "system", payload.Messages[0].Role)
		chatReply(t, w, "generated text")
	}))
	defer server.Close()

	provider, err := NewChatProvider(ChatConfig{APIKey: "test-key", Model: "test-mini", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := provider.Generate(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, "test-mini", gotModel)
}

func TestChatProviderRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Rate limit reached, please retry in 12s"},
		})
	}))
	defer server.Close()

	provider, err := NewChatProvider(ChatConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "s", "u")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 429, perr.Status)
	assert.True(t, perr.RateLimited())
	assert.Equal(t, 12, RetryAfterSeconds(perr.Message))
}

func TestChatProviderModelDiscovery(t *testing.T) {
	completions := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			completions++
			var payload struct {
				Model string `json:"model"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			if payload.Model == "retired-model" {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"message": "The model `retired-model` does not exist"},
				})
				return
			}
			chatReply(t, w, "discovered reply")
		case "/models":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"id": "big-model"},
					{"id": "small-mini-model"},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	provider, err := NewChatProvider(ChatConfig{APIKey: "k", Model: "retired-model", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := provider.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "discovered reply", text)
	assert.Equal(t, "small-mini-model", provider.Model())
	assert.Equal(t, 2, completions)

	// Discovery is one-time: a later not-found would not re-list.
	text, err = provider.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "discovered reply", text)
}

func TestChatProviderMissingCredentials(t *testing.T) {
	_, err := NewChatProvider(ChatConfig{})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
