package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
	"telegram-polyai-bot/internal/infra/logging"
	"telegram-polyai-bot/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatUseCase owns the multi-provider dispatch path. Provider failures are
// fully recovered here: the returned string is always ready to send to the
// user, whether it is the assistant's answer or an error explanation.
type ChatUseCase interface {
	Dispatch(ctx context.Context, userID int64, text string) string
	DispatchWithImages(ctx context.Context, userID int64, caption string, imageURLs []string) string
}

type chatUC struct {
	sessions SessionUseCase
	clients  map[model.Provider]adapter.ProviderClient
	stats    StatsUseCase
	log      *zerolog.Logger

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

func NewChatUseCase(sessions SessionUseCase, clients map[model.Provider]adapter.ProviderClient, stats StatsUseCase, logger *zerolog.Logger) *chatUC {
	return &chatUC{
		sessions: sessions,
		clients:  clients,
		stats:    stats,
		log:      logger,
		users:    make(map[int64]*sync.Mutex),
	}
}

// userLock serializes history mutations per user; two concurrent messages
// from one user must not interleave their appends.
func (c *chatUC) userLock(userID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.users[userID]
	if !ok {
		l = &sync.Mutex{}
		c.users[userID] = l
	}
	return l
}

func (c *chatUC) Dispatch(ctx context.Context, userID int64, text string) string {
	return c.dispatch(ctx, userID, text, nil)
}

func (c *chatUC) DispatchWithImages(ctx context.Context, userID int64, caption string, imageURLs []string) string {
	return c.dispatch(ctx, userID, caption, imageURLs)
}

func (c *chatUC) dispatch(ctx context.Context, userID int64, text string, imageURLs []string) string {
	defer logging.TraceDuration(c.log, "chat.dispatch")()

	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	c.sessions.GetOrCreate(userID)
	provider := c.sessions.Provider(userID)
	modelID := c.sessions.Model(userID)

	c.sessions.AppendTurn(userID, model.RoleUser, text)
	msgs := adapter.FromHistory(c.sessions.HistorySnapshot(userID))

	client, ok := c.clients[provider]
	if !ok {
		c.log.Error().Str("provider", string(provider)).Msg("no client configured")
		return fmt.Sprintf("Error processing message with %s: no client configured", provider.DisplayName())
	}

	if c.stats != nil {
		c.stats.RecordDispatch(provider)
	}

	tokens, _ := client.CountTokens(modelID, msgs)
	start := time.Now()
	var (
		reply string
		err   error
	)
	if len(imageURLs) > 0 {
		reply, err = client.ChatWithImages(ctx, modelID, msgs, imageURLs)
	} else {
		reply, err = client.Chat(ctx, modelID, msgs)
	}
	metrics.ObserveChatCall(string(provider), modelID, tokens, int(time.Since(start).Milliseconds()), err == nil)

	if err != nil {
		// A failed turn must not pollute context: the user turn stays, the
		// error text is never appended as an assistant turn.
		c.log.Warn().Err(err).Str("provider", string(provider)).Str("model", modelID).Msg("provider call failed")
		return fmt.Sprintf("Error processing message with %s: %v", provider.DisplayName(), err)
	}

	c.sessions.AppendTurn(userID, model.RoleAssistant, reply)
	return reply
}
