package ai

import (
	"context"
	"time"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

var _ adapter.ProviderClient = (*NoopClient)(nil)

// NoopClient implements adapter.ProviderClient for local/dev runs without
// any API key. It echoes a canned answer after a small delay.
type NoopClient struct {
	provider model.Provider
}

func NewNoopClient(p model.Provider) *NoopClient {
	return &NoopClient{provider: p}
}

func (n *NoopClient) Provider() model.Provider { return n.provider }

func (n *NoopClient) Chat(ctx context.Context, modelID string, messages []adapter.Message) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "This is a noop AI response.", nil
}

func (n *NoopClient) ChatWithImages(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	return n.Chat(ctx, modelID, messages)
}

func (n *NoopClient) CountTokens(modelID string, messages []adapter.Message) (int, error) {
	return approxTokens(messages), nil
}
