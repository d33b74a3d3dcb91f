package ai

import (
	"context"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ProviderClient = (*limitedClient)(nil)

type limitedClient struct {
	inner adapter.ProviderClient
	sem   chan struct{}
}

// NewLimitedClient caps concurrent calls into one provider.
func NewLimitedClient(inner adapter.ProviderClient, maxConcurrent int) adapter.ProviderClient {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedClient{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedClient) Provider() model.Provider { return l.inner.Provider() }

func (l *limitedClient) Chat(ctx context.Context, modelID string, messages []adapter.Message) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Chat(ctx, modelID, messages)
}

func (l *limitedClient) ChatWithImages(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.ChatWithImages(ctx, modelID, messages, imageURLs)
}

func (l *limitedClient) CountTokens(modelID string, messages []adapter.Message) (int, error) {
	return l.inner.CountTokens(modelID, messages)
}
