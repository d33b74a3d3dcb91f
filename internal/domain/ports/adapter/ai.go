package adapter

import (
	"context"

	"telegram-polyai-bot/internal/domain/model"
)

// Message is the provider-neutral chat turn handed to clients. Each client
// normalizes roles to its own wire vocabulary (system turns are stripped into
// a separate parameter where the provider takes one).
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ProviderClient is the capability one LLM backend exposes to the dispatcher.
type ProviderClient interface {
	// Provider names the backend this client serves.
	Provider() model.Provider

	// Chat sends the full normalized history and returns the assistant text.
	Chat(ctx context.Context, modelID string, messages []Message) (string, error)

	// ChatWithImages is the vision entry point; imageURLs are publicly
	// fetchable (Telegram file URLs are resolved by the caller).
	ChatWithImages(ctx context.Context, modelID string, messages []Message, imageURLs []string) (string, error)

	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(modelID string, messages []Message) (int, error)
}

// FromHistory converts session history into the neutral client format.
func FromHistory(history []model.Message) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		out = append(out, Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
