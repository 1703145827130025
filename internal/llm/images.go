package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Image providers.
const (
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// DefaultAzureAPIVersion is the Azure OpenAI API version used for DALL·E 3.
const DefaultAzureAPIVersion = "2024-02-01"

// ErrNotConfigured is returned when the selected provider lacks credentials.
var ErrNotConfigured = errors.New("image provider not configured")

// Uploader stores generated image bytes and returns a URL for them.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config selects and configures the image provider.
type Config struct {
	Provider string

	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string

	GeminiAPIKey     string
	GeminiEndpoint   string // optional base URL override
	GeminiModelImage string

	// Uploader hosts Gemini images, which come back as bytes rather than URLs.
	Uploader Uploader
	// HTTPClient overrides the SDK transport (tests, proxies).
	HTTPClient *http.Client
}

type imageProvider interface {
	generateImageURL(ctx context.Context, prompt string) (string, error)
}

// Client generates images and returns their URLs.
type Client struct {
	provider string
	images   imageProvider
}

// NewClient creates a client for cfg.Provider. Missing credentials do not fail
// construction; GenerateImageURL reports ErrNotConfigured instead.
func NewClient(cfg Config) *Client {
	if cfg.Provider == "" {
		cfg.Provider = ProviderAzure
	}
	c := &Client{provider: cfg.Provider}

	switch cfg.Provider {
	case ProviderAzure:
		if cfg.AzureEndpoint != "" && cfg.AzureAPIKey != "" {
			c.images = newAzureImages(cfg)
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey != "" {
			g, err := newGeminiImages(context.Background(), cfg)
			if err != nil {
				log.Error().Err(err).Msg("Failed to initialize genai client for image generation")
			} else {
				c.images = g
			}
		}
	default:
		log.Error().Str("provider", cfg.Provider).Msg("Unknown image provider")
	}

	log.Info().
		Str("provider", c.provider).
		Str("azure_endpoint", cfg.AzureEndpoint).
		Str("azure_deployment", cfg.AzureDeployment).
		Str("gemini_model_image", cfg.GeminiModelImage).
		Bool("configured", c.images != nil).
		Msg("Image client initialized")

	return c
}

// Provider returns the configured provider name.
func (c *Client) Provider() string { return c.provider }

// GenerateImageURL asks the provider for one image and returns its URL.
func (c *Client) GenerateImageURL(ctx context.Context, prompt string) (string, error) {
	if c.images == nil {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, c.provider)
	}
	log.Info().
		Str("provider", c.provider).
		Str("prompt_preview", prompt[:min(80, len(prompt))]).
		Msg("Generating image")

	url, err := c.images.generateImageURL(ctx, prompt)
	if err != nil {
		return "", err
	}
	log.Info().Str("provider", c.provider).Str("image_url", url).Msg("Image generated")
	return url, nil
}
