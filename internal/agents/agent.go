package agents

import (
	"context"

	"github.com/snappy-loop/decks/internal/services"
)

// ImageErrorMessage is returned to the caller in place of an image URL when generation fails.
const ImageErrorMessage = "An error occurred while generating the image."

// ImageAgent draws images for presentation content.
type ImageAgent interface {
	DrawImage(ctx context.Context, description string) string
}

// PresentationAgent creates slide decks and lists their templates.
type PresentationAgent interface {
	CreatePresentation(ctx context.Context, req services.CreateRequest) (*services.DeckResult, error)
	ListTemplates(ctx context.Context) ([]string, error)
}
