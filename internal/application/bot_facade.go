package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/config"
	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
	"telegram-polyai-bot/internal/usecase"
)

// BotFacade is the single entry point the transport layer talks to. Every
// handler returns a ready-to-send string so the Telegram adapter stays free
// of conversation logic.
type BotFacade struct {
	Sessions usecase.SessionUseCase
	Chat     usecase.ChatUseCase
	Image    usecase.ImageUseCase
	Subs     usecase.SubscriptionUseCase
	Stats    usecase.StatsUseCase

	ai  *config.AIConfig
	img *config.ImageConfig
	log *zerolog.Logger
}

func NewBotFacade(
	sessions usecase.SessionUseCase,
	chat usecase.ChatUseCase,
	image usecase.ImageUseCase,
	subs usecase.SubscriptionUseCase,
	stats usecase.StatsUseCase,
	ai *config.AIConfig,
	img *config.ImageConfig,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		Sessions: sessions,
		Chat:     chat,
		Image:    image,
		Subs:     subs,
		Stats:    stats,
		ai:       ai,
		img:      img,
		log:      logger,
	}
}

func (f *BotFacade) HandleStart(userID int64) string {
	f.Sessions.GetOrCreate(userID)
	return "Hi! I relay your messages to AI models.\n\n" + f.helpText()
}

func (f *BotFacade) HandleHelp() string {
	return f.helpText()
}

func (f *BotFacade) helpText() string {
	return strings.Join([]string{
		"Commands:",
		"/new - start a fresh conversation",
		"/model - choose an AI provider",
		"/models - choose a specific model of the current provider",
		"/img_model - choose an image generation backend",
		"/img <prompt> - generate an image",
		"/ask - ask about attached photos (caption in groups)",
		"/help - this message",
	}, "\n")
}

// HandleNew clears the history back to the system prompt. Provider choices
// survive the reset.
func (f *BotFacade) HandleNew(userID int64) string {
	f.Sessions.Reset(userID)
	return "Conversation cleared. Let's start over."
}

// ModelMenu lists providers and arms the numeric-reply selection state.
func (f *BotFacade) ModelMenu(userID int64) string {
	f.Sessions.GetOrCreate(userID)
	var b strings.Builder
	b.WriteString("Choose a provider (reply with a number):\n")
	for i, p := range model.Providers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.DisplayName())
	}
	f.Sessions.SetUIState(userID, model.UIStateSelectingProvider)
	return strings.TrimRight(b.String(), "\n")
}

// ModelsMenu lists the allowed models of the user's current provider.
func (f *BotFacade) ModelsMenu(userID int64) string {
	f.Sessions.GetOrCreate(userID)
	p := f.Sessions.Provider(userID)
	models := f.ai.AllowedModelsFor(p)
	if len(models) == 0 {
		return fmt.Sprintf("No selectable models configured for %s.", p.DisplayName())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Models for %s (reply with a number):\n", p.DisplayName())
	for i, m := range models {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m)
	}
	f.Sessions.SetUIState(userID, model.UIStateSelectingModel)
	return strings.TrimRight(b.String(), "\n")
}

// ImageModelMenu lists the image generation backends.
func (f *BotFacade) ImageModelMenu(userID int64) string {
	f.Sessions.GetOrCreate(userID)
	var b strings.Builder
	b.WriteString("Choose an image backend (reply with a number):\n")
	for i, m := range model.ImageModels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m.DisplayName())
	}
	f.Sessions.SetUIState(userID, model.UIStateSelectingImgModel)
	return strings.TrimRight(b.String(), "\n")
}

// HandleSelection consumes a pending menu state. The bool reports whether
// the text was treated as a menu reply; false means the caller should route
// the text as a normal chat message. The pending state is cleared no matter
// what the user typed, so a stray reply cannot wedge the session.
func (f *BotFacade) HandleSelection(userID int64, text string) (string, bool) {
	st := f.Sessions.UIState(userID)
	if st == model.UIStateIdle {
		return "", false
	}
	f.Sessions.ClearUIState(userID)

	n, err := strconv.Atoi(strings.TrimSpace(text))
	switch st {
	case model.UIStateSelectingProvider:
		if err != nil || n < 1 || n > len(model.Providers) {
			return "Invalid selection. Send /model to try again.", true
		}
		p := model.Providers[n-1]
		f.Sessions.SetProvider(userID, p)
		return fmt.Sprintf("Provider set to %s (model: %s).", p.DisplayName(), f.Sessions.Model(userID)), true

	case model.UIStateSelectingModel:
		p := f.Sessions.Provider(userID)
		models := f.ai.AllowedModelsFor(p)
		if err != nil || n < 1 || n > len(models) {
			return "Invalid selection. Send /models to try again.", true
		}
		f.Sessions.SetModel(userID, models[n-1])
		return fmt.Sprintf("Model set to %s.", models[n-1]), true

	case model.UIStateSelectingImgModel:
		if err != nil || n < 1 || n > len(model.ImageModels) {
			return "Invalid selection. Send /img_model to try again.", true
		}
		m := model.ImageModels[n-1]
		f.Sessions.SetImageModel(userID, m)
		return fmt.Sprintf("Image backend set to %s.", m.DisplayName()), true
	}
	return "", false
}

// HandleChat runs the text dispatch path behind the channel gate.
func (f *BotFacade) HandleChat(ctx context.Context, userID int64, text string) string {
	if msg, ok := f.gate(ctx, userID); !ok {
		return msg
	}
	return f.Chat.Dispatch(ctx, userID, text)
}

// HandlePhotos runs the vision dispatch path for one or more resolved
// photo URLs.
func (f *BotFacade) HandlePhotos(ctx context.Context, userID int64, caption string, imageURLs []string) string {
	if msg, ok := f.gate(ctx, userID); !ok {
		return msg
	}
	return f.Chat.DispatchWithImages(ctx, userID, caption, imageURLs)
}

// HandleImagePrompt generates an image for the user's selected backend.
func (f *BotFacade) HandleImagePrompt(ctx context.Context, userID int64, prompt string) (adapter.ImageResult, string) {
	if msg, ok := f.gate(ctx, userID); !ok {
		return adapter.ImageResult{}, msg
	}
	if strings.TrimSpace(prompt) == "" {
		return adapter.ImageResult{}, "Usage: /img <prompt>"
	}
	res, err := f.Image.Generate(ctx, userID, prompt)
	if err != nil {
		f.log.Warn().Err(err).Int64("tg_id", userID).Msg("image generation failed")
		return adapter.ImageResult{}, "Image generation failed: " + err.Error()
	}
	return res, ""
}

func (f *BotFacade) gate(ctx context.Context, userID int64) (string, bool) {
	ok, err := f.Subs.IsSubscriber(ctx, userID)
	if err != nil {
		// fail open on infrastructure trouble
		return "", true
	}
	if !ok {
		return fmt.Sprintf("Please join %s first, then come back.", f.Subs.Channel()), false
	}
	return "", true
}
