package ai

import (
	"github.com/pkoukk/tiktoken-go"

	"telegram-polyai-bot/internal/domain/ports/adapter"
)

// approxTokens is the fallback prompt-token estimate for providers without a
// local tokenizer (~4 chars per token).
func approxTokens(messages []adapter.Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)/4 + 4
	}
	return n
}

// tiktokenCount counts prompt tokens with the model's encoding, falling back
// to cl100k_base for unknown models and to the estimate when the encoding
// cannot be loaded at all.
func tiktokenCount(modelID string, messages []adapter.Message) int {
	enc, err := tiktoken.EncodingForModel(modelID)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return approxTokens(messages)
	}
	n := 0
	for _, m := range messages {
		n += len(enc.Encode(m.Content, nil, nil)) + 4
	}
	return n
}

// splitSystem separates system turns from the conversational turns for
// providers that take the system prompt as a separate parameter.
func splitSystem(messages []adapter.Message) (system string, rest []adapter.Message) {
	rest = make([]adapter.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
