package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const defaultGeminiModelImage = "gemini-2.5-flash-image-preview"

// geminiImages generates images with Gemini (IMAGE response modality) and
// hosts the returned bytes through an Uploader.
type geminiImages struct {
	client   *genai.Client
	model    string
	uploader Uploader
}

func newGeminiImages(ctx context.Context, cfg Config) (*geminiImages, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.GeminiEndpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiEndpoint}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}
	model := cfg.GeminiModelImage
	if model == "" {
		model = defaultGeminiModelImage
	}
	return &geminiImages{client: client, model: model, uploader: cfg.Uploader}, nil
}

func (g *geminiImages) generateImageURL(ctx context.Context, prompt string) (string, error) {
	if g.uploader == nil {
		return "", fmt.Errorf("%w: gemini images need object storage", ErrNotConfigured)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return "", fmt.Errorf("gemini image generation: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			log.Info().
				Str("model", g.model).
				Int("image_size_bytes", len(part.InlineData.Data)).
				Str("mime_type", mimeType).
				Msg("Gemini response (image blob)")

			key := "images/" + uuid.New().String() + imageExtensionForMime(mimeType)
			url, err := g.uploader.Put(ctx, key, part.InlineData.Data, mimeType)
			if err != nil {
				return "", fmt.Errorf("store generated image: %w", err)
			}
			return url, nil
		}
	}

	log.Warn().
		Str("model", g.model).
		Int("candidates", len(resp.Candidates)).
		Msg("No image blob in Gemini response")
	return "", errors.New("gemini image generation: no image in response")
}

func imageExtensionForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
