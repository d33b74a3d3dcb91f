package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain"
	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ ImageUseCase = (*imageUC)(nil)

// ImageUseCase routes an image-generation prompt to the backend selected in
// the user's session (openai or flux).
type ImageUseCase interface {
	Generate(ctx context.Context, userID int64, prompt string) (adapter.ImageResult, error)
}

type imageUC struct {
	sessions   SessionUseCase
	generators map[model.ImageModel]adapter.ImageGenerator
	log        *zerolog.Logger
}

func NewImageUseCase(sessions SessionUseCase, generators map[model.ImageModel]adapter.ImageGenerator, logger *zerolog.Logger) *imageUC {
	return &imageUC{sessions: sessions, generators: generators, log: logger}
}

func (u *imageUC) Generate(ctx context.Context, userID int64, prompt string) (adapter.ImageResult, error) {
	if prompt == "" {
		return adapter.ImageResult{}, domain.ErrInvalidArgument
	}
	m := u.sessions.ImageModel(userID)
	g, ok := u.generators[m]
	if !ok {
		return adapter.ImageResult{}, fmt.Errorf("image model %q: %w", m, domain.ErrUnknownProvider)
	}
	u.log.Debug().Int64("tg_id", userID).Str("image_model", string(m)).Msg("generating image")
	return g.Generate(ctx, prompt)
}
