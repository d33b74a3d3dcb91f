package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/application"
	"telegram-polyai-bot/internal/config"
	"telegram-polyai-bot/internal/domain/ports/adapter"
	"telegram-polyai-bot/internal/infra/logging"
	"telegram-polyai-bot/internal/infra/metrics"
	red "telegram-polyai-bot/internal/infra/redis"
	"telegram-polyai-bot/internal/infra/worker"
	"telegram-polyai-bot/internal/usecase"
)

var (
	_ adapter.TelegramBot       = (*RealTelegramBot)(nil)
	_ adapter.MembershipChecker = (*RealTelegramBot)(nil)
)

// RealTelegramBot polls updates with tgbotapi, fans them out to a worker
// pool and delegates all conversation logic to the BotFacade. Albums go
// through the media-group aggregator so one album yields one AI call.
type RealTelegramBot struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.Config
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	aggregator  *usecase.MediaGroupAggregator
	pool        *worker.Pool
	log         *zerolog.Logger

	username      string
	cancelPolling context.CancelFunc
}

func NewRealTelegramBot(cfg *config.Config, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBot, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}

	username := cfg.Bot.Username
	if username == "" && bot.Self.UserName != "" {
		username = bot.Self.UserName
	}

	r := &RealTelegramBot{
		bot:         bot,
		cfg:         cfg,
		facade:      facade,
		rateLimiter: rateLimiter,
		pool:        worker.NewPool(cfg.Bot.Workers, logger),
		log:         logger,
		username:    username,
	}
	r.aggregator = usecase.NewMediaGroupAggregator(
		cfg.Media.Debounce.Std(),
		cfg.Media.Command,
		r.emitMediaGroup,
		r.mediaUsageError,
		logger,
	)
	return r, nil
}

func (r *RealTelegramBot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	r.pool.Start(ctx)
	defer r.pool.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up := <-updates:
			update := up
			if err := r.pool.Submit(func(taskCtx context.Context) error {
				return r.handleUpdate(taskCtx, update)
			}); err != nil {
				r.log.Warn().Err(err).Msg("update dropped")
			}
		}
	}
}

func (r *RealTelegramBot) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, userID)
	log := logging.With(ctx, r.log)

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}
	metrics.IncUpdate(updateKind(msg))

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, command), 20, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			metrics.IncRateLimited()
			return r.SendMessage(ctx, chatID, "Rate limit exceeded. Please try again later.")
		}
	}

	if len(msg.Photo) > 0 {
		return r.handlePhoto(ctx, msg)
	}

	if msg.IsCommand() {
		return r.handleCommand(ctx, msg)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	// Pending menu replies win over everything else.
	if reply, handled := r.facade.HandleSelection(userID, text); handled {
		return r.SendMessage(ctx, chatID, reply)
	}

	if isGroupChat(msg.Chat) {
		question, ok := r.groupQuestion(text)
		if !ok {
			return nil
		}
		reply := r.facade.HandleChat(ctx, userID, question)
		return r.ReplyTo(ctx, chatID, msg.MessageID, reply)
	}

	reply := r.facade.HandleChat(ctx, userID, text)
	return r.SendMessage(ctx, chatID, reply)
}

// groupQuestion decides whether a plain group message is addressed to the
// bot: either it starts with the ask command or it mentions the bot. It
// returns the text with the trigger stripped.
func (r *RealTelegramBot) groupQuestion(text string) (string, bool) {
	cmd := r.cfg.Media.Command
	if cmd != "" && strings.HasPrefix(text, cmd) {
		return strings.TrimSpace(strings.TrimPrefix(text, cmd)), true
	}
	if r.username != "" {
		mention := "@" + r.username
		if strings.Contains(text, mention) {
			return strings.TrimSpace(strings.ReplaceAll(text, mention, "")), true
		}
	}
	return "", false
}

func updateKind(msg *tgbotapi.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return "photo"
	case msg.IsCommand():
		return "command"
	default:
		return "text"
	}
}

func isGroupChat(chat *tgbotapi.Chat) bool {
	return chat != nil && (chat.IsGroup() || chat.IsSuperGroup())
}

// SendMessage implements adapter.TelegramBot.
func (r *RealTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// ReplyTo sends text as a reply to a specific message.
func (r *RealTelegramBot) ReplyTo(ctx context.Context, chatID int64, messageID int, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBot) SendPhotoURL(ctx context.Context, chatID int64, url string) error {
	_, err := r.bot.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url)))
	return err
}

func (r *RealTelegramBot) SendPhotoBytes(ctx context.Context, chatID int64, name string, data []byte) error {
	_, err := r.bot.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data}))
	return err
}

// IsChannelMember implements adapter.MembershipChecker via getChatMember.
func (r *RealTelegramBot) IsChannelMember(ctx context.Context, channel string, userID int64) (bool, error) {
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             userID,
		},
	})
	if err != nil {
		return false, err
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	}
	return false, nil
}

// fileURL resolves a Telegram file id into a downloadable URL.
func (r *RealTelegramBot) fileURL(fileID string) (string, error) {
	file, err := r.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", err
	}
	return file.Link(r.bot.Token), nil
}

func (r *RealTelegramBot) fileURLs(fileIDs []string) ([]string, error) {
	urls := make([]string, 0, len(fileIDs))
	for _, id := range fileIDs {
		u, err := r.fileURL(id)
		if err != nil {
			return nil, fmt.Errorf("resolve file %s: %w", id, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}
