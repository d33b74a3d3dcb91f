package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

// Compile-time assurance this client satisfies the port
var _ adapter.ProviderClient = (*AnthropicClient)(nil)

// AnthropicClient implements adapter.ProviderClient against the Messages
// API. Anthropic takes the system prompt as a separate parameter, so system
// turns are stripped from the message list.
type AnthropicClient struct {
	apiKey    string
	base      string
	maxTokens int
	client    *http.Client
}

func NewAnthropicClient(apiKey string, maxTokens int) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key empty")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		apiKey:    apiKey,
		base:      "https://api.anthropic.com/v1",
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *AnthropicClient) Provider() model.Provider { return model.ProviderAnthropic }

type anthropicMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func (a *AnthropicClient) Chat(ctx context.Context, modelID string, messages []adapter.Message) (string, error) {
	system, rest := splitSystem(messages)
	msgs := make([]anthropicMsg, 0, len(rest))
	for _, m := range rest {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, anthropicMsg{Role: role, Content: m.Content})
	}
	return a.messages(ctx, modelID, system, msgs)
}

func (a *AnthropicClient) ChatWithImages(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages")
	}
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return "", errors.New("no messages")
	}
	msgs := make([]anthropicMsg, 0, len(rest))
	for _, m := range rest[:len(rest)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, anthropicMsg{Role: role, Content: m.Content})
	}
	type block map[string]any
	blocks := make([]block, 0, len(imageURLs)+1)
	for _, u := range imageURLs {
		blocks = append(blocks, block{"type": "image", "source": map[string]string{"type": "url", "url": u}})
	}
	blocks = append(blocks, block{"type": "text", "text": rest[len(rest)-1].Content})
	msgs = append(msgs, anthropicMsg{Role: "user", Content: blocks})
	return a.messages(ctx, modelID, system, msgs)
}

func (a *AnthropicClient) CountTokens(modelID string, messages []adapter.Message) (int, error) {
	return approxTokens(messages), nil
}

func (a *AnthropicClient) messages(ctx context.Context, modelID, system string, msgs []anthropicMsg) (string, error) {
	reqBody := struct {
		Model     string         `json:"model"`
		MaxTokens int            `json:"max_tokens"`
		System    string         `json:"system,omitempty"`
		Messages  []anthropicMsg `json:"messages"`
	}{Model: modelID, MaxTokens: a.maxTokens, System: system, Messages: msgs}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/messages", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("anthropic http %d", resp.StatusCode)
	}

	var payload struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, c := range payload.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text content")
	}
	return sb.String(), nil
}
