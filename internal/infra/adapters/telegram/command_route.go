package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (r *RealTelegramBot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return r.SendMessage(ctx, chatID, r.facade.HandleStart(userID))

	case "help":
		return r.SendMessage(ctx, chatID, r.facade.HandleHelp())

	case "new":
		return r.SendMessage(ctx, chatID, r.facade.HandleNew(userID))

	case "model":
		return r.SendMessage(ctx, chatID, r.facade.ModelMenu(userID))

	case "models":
		return r.SendMessage(ctx, chatID, r.facade.ModelsMenu(userID))

	case "img_model":
		return r.SendMessage(ctx, chatID, r.facade.ImageModelMenu(userID))

	case "img":
		return r.handleImageCommand(ctx, chatID, userID, args)

	case "ask":
		if args == "" {
			return r.SendMessage(ctx, chatID, "Usage: "+r.cfg.Media.Command+" <question>, or attach it as a photo caption.")
		}
		reply := r.facade.HandleChat(ctx, userID, args)
		if isGroupChat(msg.Chat) {
			return r.ReplyTo(ctx, chatID, msg.MessageID, reply)
		}
		return r.SendMessage(ctx, chatID, reply)

	default:
		return r.SendMessage(ctx, chatID, "Unknown command. Send /help for the list.")
	}
}

func (r *RealTelegramBot) handleImageCommand(ctx context.Context, chatID, userID int64, prompt string) error {
	res, errMsg := r.facade.HandleImagePrompt(ctx, userID, prompt)
	if errMsg != "" {
		return r.SendMessage(ctx, chatID, errMsg)
	}
	if res.URL != "" {
		return r.SendPhotoURL(ctx, chatID, res.URL)
	}
	if len(res.Bytes) > 0 {
		return r.SendPhotoBytes(ctx, chatID, "image.jpg", res.Bytes)
	}
	return r.SendMessage(ctx, chatID, "Image generation returned nothing.")
}
