//go:build !integration

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/config"
	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testAIConfig() *config.AIConfig {
	return &config.AIConfig{
		DefaultProvider: "openai",
		Providers: map[model.Provider]config.ProviderConfig{
			model.ProviderOpenAI:    {DefaultModel: "gpt-4o-mini", AllowedModels: []string{"gpt-4o-mini", "gpt-4o"}},
			model.ProviderAnthropic: {DefaultModel: "claude-3-5-haiku-20241022"},
			model.ProviderGemini:    {DefaultModel: "gemini-pro"},
			model.ProviderGrok:      {DefaultModel: "grok-1"},
		},
		MaxTokens: 1024,
	}
}

func newTestSessions() *sessionUC {
	return NewSessionUseCase(testAIConfig(), config.SessionConfig{
		Expiry:       config.Duration(time.Hour),
		SystemPrompt: "You are a helpful assistant.",
	}, model.ImageModelOpenAI, nopLogger())
}

// fakeProviderClient records calls and returns a canned reply or error.
type fakeProviderClient struct {
	mu       sync.Mutex
	provider model.Provider
	reply    string
	err      error

	calls     int
	lastModel string
	lastMsgs  []adapter.Message
	lastURLs  []string
}

func (f *fakeProviderClient) Provider() model.Provider { return f.provider }

func (f *fakeProviderClient) Chat(ctx context.Context, modelID string, messages []adapter.Message) (string, error) {
	return f.record(modelID, messages, nil)
}

func (f *fakeProviderClient) ChatWithImages(ctx context.Context, modelID string, messages []adapter.Message, imageURLs []string) (string, error) {
	return f.record(modelID, messages, imageURLs)
}

func (f *fakeProviderClient) CountTokens(modelID string, messages []adapter.Message) (int, error) {
	return len(messages), nil
}

func (f *fakeProviderClient) record(modelID string, messages []adapter.Message, urls []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastModel = modelID
	f.lastMsgs = append([]adapter.Message(nil), messages...)
	f.lastURLs = append([]string(nil), urls...)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeChecker is a scripted membership checker.
type fakeChecker struct {
	member bool
	err    error
	calls  int
}

func (f *fakeChecker) IsChannelMember(ctx context.Context, channel string, userID int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.member, nil
}

var errBoom = errors.New("boom")
