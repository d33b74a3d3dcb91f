package adapter

import "context"

// ImageResult carries either a URL to the generated image or raw bytes,
// depending on what the backend returns.
type ImageResult struct {
	URL   string
	Bytes []byte
}

// ImageGenerator is the capability one image backend exposes.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (ImageResult, error)
}
