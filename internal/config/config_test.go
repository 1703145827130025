package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"HTTP_ADDR", "TEMPLATES_DIR", "DEFAULT_TEMPLATE", "OUTPUT_PATH", "SLIDE_MARKER",
		"IMAGE_PROVIDER", "AZURE_OPENAI_API_VERSION", "IMAGE_FETCH_TIMEOUT", "S3_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "templates", cfg.TemplatesDir)
	assert.Equal(t, "default.pptx", cfg.DefaultTemplate)
	assert.Equal(t, "presentation.pptx", cfg.OutputPath)
	assert.Equal(t, "#", cfg.SlideMarker)
	assert.Equal(t, "azure", cfg.ImageProvider)
	assert.Equal(t, "2024-02-01", cfg.AzureAPIVersion)
	assert.Equal(t, 60*time.Second, cfg.ImageFetchTimeout)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte(
		"AZURE_OPENAI_DALLE_ENDPOINT=https://dalle.openai.azure.com\n"+
			"AZURE_OPENAI_DALLE_DEPLOYMENT=dalle3\n"+
			"OUTPUT_PATH=from-file.pptx\n"), 0o644)
	assert.NoError(t, err)
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("OUTPUT_PATH", "from-env.pptx")
	t.Setenv("IMAGE_FETCH_TIMEOUT", "5s")
	// godotenv never overrides variables that are already set, even to "".
	for _, key := range []string{"AZURE_OPENAI_DALLE_ENDPOINT", "AZURE_OPENAI_DALLE_DEPLOYMENT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, "https://dalle.openai.azure.com", cfg.AzureDalleEndpoint)
	assert.Equal(t, "dalle3", cfg.AzureDalleDeployment)
	assert.Equal(t, "from-env.pptx", cfg.OutputPath)
	assert.Equal(t, 5*time.Second, cfg.ImageFetchTimeout)
}

func TestStorageEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"nothing", Config{}, false},
		{"bucket only", Config{S3Bucket: "decks"}, false},
		{"bucket and endpoint", Config{S3Bucket: "decks", S3Endpoint: "http://minio:9000"}, true},
		{"bucket and key", Config{S3Bucket: "decks", S3AccessKey: "ak"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.StorageEnabled())
		})
	}
}
