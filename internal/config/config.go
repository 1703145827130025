package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr string
	MCPAddr  string
	LogLevel string

	// Auth: bcrypt hash of the API key accepted on /v1 and MCP. Empty disables auth.
	APIKeyHash string

	// Presentations
	TemplatesDir    string
	DefaultTemplate string
	OutputPath      string // every deck overwrites this file
	SlideMarker     string

	// Image download during deck assembly
	ImageFetchTimeout time.Duration
	ImageFetchMaxSize int64

	// Image generation
	ImageProvider string // azure or gemini

	AzureDalleEndpoint   string
	AzureDalleKey        string
	AzureDalleDeployment string
	AzureAPIVersion      string

	GeminiAPIKey      string
	GeminiAPIEndpoint string // if set, overrides default Gemini API base URL
	GeminiModelImage  string

	// S3/Storage: hosts Gemini images and published decks when configured
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string
	PublishDecks bool
}

// Load loads configuration from environment variables. Values from a .env
// file (ENV_FILE, default .env) are applied first without overriding the
// process environment.
func Load() *Config {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", envFile).Msg("Failed to load env file")
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		MCPAddr:  getEnv("MCP_ADDR", ":9091"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIKeyHash: getEnv("API_KEY_HASH", ""),

		TemplatesDir:    getEnv("TEMPLATES_DIR", "templates"),
		DefaultTemplate: getEnv("DEFAULT_TEMPLATE", "default.pptx"),
		OutputPath:      getEnv("OUTPUT_PATH", "presentation.pptx"),
		SlideMarker:     getEnv("SLIDE_MARKER", "#"),

		ImageFetchTimeout: getEnvDuration("IMAGE_FETCH_TIMEOUT", 60*time.Second),
		ImageFetchMaxSize: getEnvInt64("IMAGE_FETCH_MAX_SIZE", 20*1024*1024), // 20MB

		ImageProvider: getEnv("IMAGE_PROVIDER", "azure"),

		AzureDalleEndpoint:   getEnv("AZURE_OPENAI_DALLE_ENDPOINT", ""),
		AzureDalleKey:        getEnv("AZURE_OPENAI_DALLE_KEY", ""),
		AzureDalleDeployment: getEnv("AZURE_OPENAI_DALLE_DEPLOYMENT", "dall-e-3"),
		AzureAPIVersion:      getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModelImage:  getEnv("GEMINI_MODEL_IMAGE", "gemini-2.5-flash-image-preview"),

		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:  getEnv("S3_PUBLIC_URL", ""),
		PublishDecks: getEnvBool("PUBLISH_DECKS", false),
	}
}

// StorageEnabled reports whether enough S3 settings are present to build a client.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != "" && (c.S3AccessKey != "" || c.S3Endpoint != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
