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
var _ adapter.ProviderClient = (*GrokClient)(nil)

// GrokClient implements adapter.ProviderClient against an OpenAI-compatible
// gateway. The chat completions path is the same as OpenAI's:
// /chat/completions with Authorization: Bearer <key>.
type GrokClient struct {
	apiKey string
	base   string
	client *http.Client
}

func NewGrokClient(apiKey, base string) (*GrokClient, error) {
	if apiKey == "" {
		return nil, errors.New("grok api key empty")
	}
	if base == "" {
		base = "https://api.groq.com/openai/v1"
	}
	return &GrokClient{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (g *GrokClient) Provider() model.Provider { return model.ProviderGrok }

func (g *GrokClient) Chat(ctx context.Context, modelID string, messages []adapter.Message) (string, error) {
	reqBody := struct {
		Model    string            `json:"model"`
		Messages []adapter.Message `json:"messages"`
	}{Model: modelID, Messages: messages}
	return g.completions(ctx, reqBody)
}

func (g *GrokClient) ChatWithImages(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages")
	}
	type part map[string]any
	type msg struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	}
	out := make([]msg, 0, len(messages))
	for _, m := range messages[:len(messages)-1] {
		out = append(out, msg{Role: m.Role, Content: m.Content})
	}
	last := messages[len(messages)-1]
	parts := []part{{"type": "text", "text": last.Content}}
	for _, u := range imageURLs {
		parts = append(parts, part{"type": "image_url", "image_url": map[string]string{"url": u, "detail": "auto"}})
	}
	out = append(out, msg{Role: "user", Content: parts})

	reqBody := struct {
		Model    string `json:"model"`
		Messages []msg  `json:"messages"`
	}{Model: modelID, Messages: out}
	return g.completions(ctx, reqBody)
}

func (g *GrokClient) CountTokens(modelID string, messages []adapter.Message) (int, error) {
	return approxTokens(messages), nil
}

func (g *GrokClient) completions(ctx context.Context, reqBody any) (string, error) {
	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("grok http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}
