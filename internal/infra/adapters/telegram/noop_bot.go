package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain/ports/adapter"
)

var (
	_ adapter.TelegramBot       = (*NoopBot)(nil)
	_ adapter.MembershipChecker = (*NoopBot)(nil)
)

// NoopBot implements the outbound Telegram ports for local/dev runs. It
// logs instead of calling the Bot API and treats everyone as a channel
// member.
type NoopBot struct {
	log *zerolog.Logger
}

func NewNoopBot(logger *zerolog.Logger) *NoopBot {
	return &NoopBot{log: logger}
}

func (b *NoopBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop send")
	return nil
}

func (b *NoopBot) ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error {
	b.log.Info().Int64("chat_id", chatID).Int("reply_to", messageID).Str("text", text).Msg("noop reply")
	return nil
}

func (b *NoopBot) SendPhotoURL(ctx context.Context, chatID int64, url string) error {
	b.log.Info().Int64("chat_id", chatID).Str("url", url).Msg("noop photo")
	return nil
}

func (b *NoopBot) SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte) error {
	b.log.Info().Int64("chat_id", chatID).Str("name", name).Int("bytes", len(data)).Msg("noop photo bytes")
	return nil
}

func (b *NoopBot) IsChannelMember(ctx context.Context, channel string, userID int64) (bool, error) {
	return true, nil
}
