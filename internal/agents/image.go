package agents

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ImageGenerator is the image backend, e.g. *llm.Client.
type ImageGenerator interface {
	GenerateImageURL(ctx context.Context, prompt string) (string, error)
}

// ImageAgentImpl wraps an ImageGenerator and never fails: errors become ImageErrorMessage.
type ImageAgentImpl struct {
	Generator ImageGenerator
}

// NewImageAgent returns an ImageAgent that delegates to gen.
func NewImageAgent(gen ImageGenerator) ImageAgent {
	return &ImageAgentImpl{Generator: gen}
}

// DrawImage returns the URL of a new image for description, or ImageErrorMessage.
func (a *ImageAgentImpl) DrawImage(ctx context.Context, description string) string {
	log.Info().Str("description", description).Msg("Drawing an image")
	url, err := a.Generator.GenerateImageURL(ctx, description)
	if err != nil {
		log.Error().Err(err).Msg("Image generation failed")
		return ImageErrorMessage
	}
	return url
}
