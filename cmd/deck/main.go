// Command deck builds a presentation from an outline file without running the servers.
//
//	deck -title "Cats" -subtitle "A survey" -content outline.md [-template dark] [-out cats.pptx]
//	deck -list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/config"
	"github.com/snappy-loop/decks/internal/imagefetch"
	"github.com/snappy-loop/decks/internal/services"
	"github.com/snappy-loop/decks/internal/templates"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	var (
		title    = flag.String("title", "", "presentation title (required)")
		subtitle = flag.String("subtitle", "", "presentation subtitle")
		content  = flag.String("content", "-", "outline file, - for stdin")
		tmpl     = flag.String("template", cfg.DefaultTemplate, "template name from -list")
		out      = flag.String("out", cfg.OutputPath, "output .pptx path")
		dir      = flag.String("templates", cfg.TemplatesDir, "template directory")
		list     = flag.Bool("list", false, "list templates and exit")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	store := templates.NewStore(*dir, cfg.DefaultTemplate)
	if *list {
		names, err := store.List()
		if err != nil {
			log.Fatal().Err(err).Str("dir", *dir).Msg("Failed to list templates")
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	if *title == "" {
		flag.Usage()
		os.Exit(2)
	}
	text, err := readContent(*content)
	if err != nil {
		log.Fatal().Err(err).Str("content", *content).Msg("Failed to read outline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := imagefetch.NewHTTPFetcher(cfg.ImageFetchTimeout).WithMaxBytes(cfg.ImageFetchMaxSize)
	svc := services.NewPresentationService(store, fetcher, nil, *out, cfg.SlideMarker)
	res, err := svc.Create(ctx, services.CreateRequest{
		Title:    *title,
		Subtitle: *subtitle,
		Content:  text,
		Template: *tmpl,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create presentation")
	}
	fmt.Println(res.Path)
}

func readContent(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
