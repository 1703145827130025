package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/agents"
	"github.com/snappy-loop/decks/internal/auth"
	"github.com/snappy-loop/decks/internal/config"
	"github.com/snappy-loop/decks/internal/handlers"
	"github.com/snappy-loop/decks/internal/imagefetch"
	"github.com/snappy-loop/decks/internal/llm"
	"github.com/snappy-loop/decks/internal/mcpserver"
	"github.com/snappy-loop/decks/internal/services"
	"github.com/snappy-loop/decks/internal/storage"
	"github.com/snappy-loop/decks/internal/templates"
)

const version = "v1.0.0"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Deck Agents (REST + MCP)")

	authService := auth.NewService(cfg.APIKeyHash)

	var storageClient *storage.Client
	if cfg.StorageEnabled() {
		storageClient, err = storage.NewClient(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicURL,
		)
		if err != nil {
			log.Warn().Err(err).Msg("S3 not available; gemini images and deck publishing disabled")
			storageClient = nil
		}
	}

	llmCfg := llm.Config{
		Provider:         cfg.ImageProvider,
		AzureEndpoint:    cfg.AzureDalleEndpoint,
		AzureAPIKey:      cfg.AzureDalleKey,
		AzureDeployment:  cfg.AzureDalleDeployment,
		AzureAPIVersion:  cfg.AzureAPIVersion,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiEndpoint:   cfg.GeminiAPIEndpoint,
		GeminiModelImage: cfg.GeminiModelImage,
	}
	var publisher services.Publisher
	if storageClient != nil {
		llmCfg.Uploader = storageClient
		if cfg.PublishDecks {
			publisher = storageClient
		}
	}
	llmClient := llm.NewClient(llmCfg)

	fetcher := imagefetch.NewHTTPFetcher(cfg.ImageFetchTimeout).WithMaxBytes(cfg.ImageFetchMaxSize)
	store := templates.NewStore(cfg.TemplatesDir, cfg.DefaultTemplate)
	if names, err := store.List(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.TemplatesDir).Msg("Template directory not readable")
	} else {
		log.Info().Str("dir", cfg.TemplatesDir).Strs("templates", names).Msg("Templates loaded")
	}
	presentationService := services.NewPresentationService(store, fetcher, publisher, cfg.OutputPath, cfg.SlideMarker)

	imageAgent := agents.NewImageAgent(llmClient)
	presentationAgent := agents.NewPresentationAgent(presentationService)

	// REST server with auth on /v1
	h := handlers.NewHandler(imageAgent, presentationAgent, presentationService)
	apiHTTP := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     h.Router(authService),
		ReadTimeout: 30 * time.Second,
		// image generation and downloads can take minutes
		WriteTimeout: 5 * time.Minute,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("REST server listening")
		if err := apiHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("REST server error")
		}
	}()

	// MCP HTTP server with auth
	mcpSrv := mcpserver.NewServer(imageAgent, presentationAgent, version)
	mcpHTTP := &http.Server{
		Addr:         cfg.MCPAddr,
		Handler:      authService.Middleware(mcpSrv.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	go func() {
		log.Info().Str("addr", cfg.MCPAddr).Msg("MCP server listening")
		if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("MCP HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down agents...")

	// each server gets a fresh context so it always gets a full timeout
	for name, srv := range map[string]*http.Server{"REST": apiHTTP, "MCP": mcpHTTP} {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Str("server", name).Msg("HTTP shutdown error")
		}
		cancel()
	}

	log.Info().Msg("Agents exited")
}
