package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/infra/logging"
)

// defaultPhotoQuestion is used for captionless photos in private chats.
const defaultPhotoQuestion = "What is in this image?"

// handlePhoto routes an incoming photo message. Album members are buffered
// by the aggregator; standalone photos dispatch immediately.
func (r *RealTelegramBot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) error {
	pm := model.PhotoMessage{
		MessageID: msg.MessageID,
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		FileID:    largestPhotoFileID(msg.Photo),
		Caption:   msg.Caption,
	}

	if msg.MediaGroupID != "" {
		r.aggregator.OnPhoto(ctx, msg.MediaGroupID, pm)
		return nil
	}

	caption, ok := r.resolveSingleCaption(msg)
	if !ok {
		return r.mediaUsage(ctx, pm)
	}

	url, err := r.fileURL(pm.FileID)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("photo file resolve failed")
		return r.ReplyTo(ctx, pm.ChatID, pm.MessageID, "Could not download that photo, please try again.")
	}
	reply := r.facade.HandlePhotos(ctx, pm.UserID, caption, []string{url})
	return r.ReplyTo(ctx, pm.ChatID, pm.MessageID, reply)
}

// resolveSingleCaption applies the chat-type rules for one photo: private
// chats fall back to a default question, groups require the ask command in
// the caption.
func (r *RealTelegramBot) resolveSingleCaption(msg *tgbotapi.Message) (string, bool) {
	caption := strings.TrimSpace(msg.Caption)
	cmd := r.cfg.Media.Command

	if isGroupChat(msg.Chat) {
		if cmd == "" || !strings.HasPrefix(caption, cmd) {
			return "", false
		}
		caption = strings.TrimSpace(strings.TrimPrefix(caption, cmd))
		if caption == "" {
			return "", false
		}
		return caption, true
	}

	if caption == "" {
		return defaultPhotoQuestion, true
	}
	if cmd != "" && strings.HasPrefix(caption, cmd) {
		caption = strings.TrimSpace(strings.TrimPrefix(caption, cmd))
		if caption == "" {
			return defaultPhotoQuestion, true
		}
	}
	return caption, true
}

// emitMediaGroup is the aggregator flush callback: resolve every file id,
// then run one vision dispatch for the whole album.
func (r *RealTelegramBot) emitMediaGroup(ctx context.Context, req *model.MediaGroupRequest) {
	log := logging.With(ctx, r.log)

	urls, err := r.fileURLs(req.FileIDs)
	if err != nil {
		log.Error().Err(err).Str("request_id", req.ID).Msg("album file resolve failed")
		_ = r.ReplyTo(ctx, req.ChatID, req.ReplyTo, "Could not download those photos, please try again.")
		return
	}

	reply := r.facade.HandlePhotos(ctx, req.UserID, req.Caption, urls)
	if err := r.ReplyTo(ctx, req.ChatID, req.ReplyTo, reply); err != nil {
		log.Error().Err(err).Str("request_id", req.ID).Msg("album reply failed")
	}
}

// mediaUsageError is the aggregator callback for captionless albums.
func (r *RealTelegramBot) mediaUsageError(ctx context.Context, first model.PhotoMessage) {
	_ = r.mediaUsage(ctx, first)
}

func (r *RealTelegramBot) mediaUsage(ctx context.Context, pm model.PhotoMessage) error {
	return r.ReplyTo(ctx, pm.ChatID, pm.MessageID,
		"To ask about photos here, add a caption starting with "+r.cfg.Media.Command+".")
}

// largestPhotoFileID picks the biggest size variant Telegram offers.
func largestPhotoFileID(sizes []tgbotapi.PhotoSize) string {
	best := ""
	area := -1
	for _, s := range sizes {
		if a := s.Width * s.Height; a > area {
			area = a
			best = s.FileID
		}
	}
	return best
}
