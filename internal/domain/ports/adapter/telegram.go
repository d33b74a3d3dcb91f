package adapter

import "context"

// TelegramBot is the outbound message surface the application layer needs.
type TelegramBot interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error
	SendPhotoURL(ctx context.Context, chatID int64, url string) error
	SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte) error
}

// MembershipChecker answers whether a user is a member of the gate channel.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, channel string, userID int64) (bool, error)
}
