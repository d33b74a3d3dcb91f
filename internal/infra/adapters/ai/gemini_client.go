package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

var _ adapter.ProviderClient = (*GeminiClient)(nil)

// GeminiClient implements adapter.ProviderClient using the official SDK.
// System turns become the system instruction; history roles normalize to
// the user/model vocabulary.
type GeminiClient struct {
	client *genai.Client
	maxOut int
	httpc  *http.Client // image fetches for vision calls
}

func NewGeminiClient(ctx context.Context, apiKey, baseURL string, maxOut int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client: c,
		maxOut: maxOut,
		httpc:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (g *GeminiClient) Provider() model.Provider { return model.ProviderGemini }

func (g *GeminiClient) Chat(ctx context.Context, modelID string, messages []adapter.Message) (string, error) {
	return g.chatCore(ctx, modelID, messages, nil)
}

func (g *GeminiClient) ChatWithImages(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	return g.chatCore(ctx, modelID, messages, imageURLs)
}

func (g *GeminiClient) CountTokens(modelID string, messages []adapter.Message) (int, error) {
	return approxTokens(messages), nil
}

func (g *GeminiClient) chatCore(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return "", errors.New("gemini: no messages")
	}
	last := rest[len(rest)-1]
	if strings.ToLower(last.Role) != "user" {
		return "", errors.New("gemini: last message must be from user")
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOut),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	chat, err := g.client.Chats.Create(ctx, modelID, cfg, toGenAIHistory(rest[:len(rest)-1]))
	if err != nil {
		return "", err
	}

	parts := []genai.Part{{Text: last.Content}}
	for _, u := range imageURLs {
		data, mime, err := g.fetchImage(ctx, u)
		if err != nil {
			return "", fmt.Errorf("gemini: fetch image: %w", err)
		}
		parts = append(parts, genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: data}})
	}

	resp, err := chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", err
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func (g *GeminiClient) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := g.httpc.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}
	return data, mime, nil
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if strings.ToLower(m.Role) == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
