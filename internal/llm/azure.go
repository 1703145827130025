package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

// azureImages calls a DALL·E deployment on Azure OpenAI.
type azureImages struct {
	client     openai.Client
	deployment string
}

func newAzureImages(cfg Config) *azureImages {
	apiVersion := cfg.AzureAPIVersion
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	opts := []option.RequestOption{
		azure.WithEndpoint(cfg.AzureEndpoint, apiVersion),
		azure.WithAPIKey(cfg.AzureAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &azureImages{
		client:     openai.NewClient(opts...),
		deployment: cfg.AzureDeployment,
	}
}

func (a *azureImages) generateImageURL(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(a.deployment),
		N:      openai.Int(1),
	})
	if err != nil {
		return "", fmt.Errorf("azure image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("azure image generation: no image URL in response")
	}
	return resp.Data[0].URL, nil
}
