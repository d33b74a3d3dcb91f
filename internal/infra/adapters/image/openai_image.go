package image

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-polyai-bot/internal/domain/ports/adapter"
)

var _ adapter.ImageGenerator = (*OpenAIImageGenerator)(nil)

// OpenAIImageGenerator produces images through the Images API.
type OpenAIImageGenerator struct {
	client openai.Client
	model  string
}

func NewOpenAIImageGenerator(apiKey, model string) (*OpenAIImageGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("openai image: empty api key")
	}
	if model == "" {
		model = "dall-e-3"
	}
	return &OpenAIImageGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (g *OpenAIImageGenerator) Generate(ctx context.Context, prompt string) (adapter.ImageResult, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  openai.ImageModel(g.model),
		Prompt: prompt,
		N:      openai.Int(1),
	})
	if err != nil {
		return adapter.ImageResult{}, err
	}
	if resp == nil || len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return adapter.ImageResult{}, errors.New("openai image: empty response")
	}
	return adapter.ImageResult{URL: resp.Data[0].URL}, nil
}
