package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/imagefetch"
	"github.com/snappy-loop/decks/internal/outline"
	"github.com/snappy-loop/decks/internal/pptx"
	"github.com/snappy-loop/decks/internal/templates"
)

// DefaultOutputPath is where decks are written, relative to the working directory.
const DefaultOutputPath = "presentation.pptx"

// Slide layouts used from the template's first master.
const (
	titleLayout   = 0
	contentLayout = 1
	bodyIdx       = 1
)

// imageTopOffset is added (in EMU) to the top of every placed picture.
const imageTopOffset = 20

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Publisher uploads a finished deck and returns a URL for it.
type Publisher interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// CreateRequest is the input of PresentationService.Create.
type CreateRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

// DeckResult describes a written deck.
type DeckResult struct {
	Path          string `json:"path"`
	URL           string `json:"url,omitempty"`
	Template      string `json:"template"`
	Slides        int    `json:"slides"`
	ImagesPlaced  int    `json:"images_placed"`
	ImagesSkipped int    `json:"images_skipped"`
}

// PresentationService builds decks from outlines.
type PresentationService struct {
	store      *templates.Store
	fetcher    imagefetch.Fetcher
	publisher  Publisher
	outputPath string
	marker     string

	// mu serializes writes to outputPath.
	mu sync.Mutex
}

// NewPresentationService returns a service writing to outputPath (DefaultOutputPath when empty).
// publisher may be nil.
func NewPresentationService(store *templates.Store, fetcher imagefetch.Fetcher, publisher Publisher, outputPath, marker string) *PresentationService {
	if outputPath == "" {
		outputPath = DefaultOutputPath
	}
	return &PresentationService{
		store:      store,
		fetcher:    fetcher,
		publisher:  publisher,
		outputPath: outputPath,
		marker:     marker,
	}
}

// OutputPath returns the path every deck is written to.
func (s *PresentationService) OutputPath() string { return s.outputPath }

// ListTemplates returns the available template names.
func (s *PresentationService) ListTemplates(ctx context.Context) ([]string, error) {
	return s.store.List()
}

// Create compiles req.Content into slides on top of the resolved template
// and writes the deck to the output path. Image download failures skip the
// image; template and output errors are returned.
func (s *PresentationService) Create(ctx context.Context, req CreateRequest) (*DeckResult, error) {
	if req.Template == "" {
		req.Template = s.store.Default()
	}
	name := s.store.Resolve(req.Template)

	deck, err := pptx.Open(s.store.Path(name))
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", name, err)
	}

	slides := outline.Compile(req.Title, req.Subtitle, req.Content, outline.Options{Marker: s.marker})
	result := &DeckResult{Path: s.outputPath, Template: name, Slides: len(slides)}

	log.Info().
		Str("title", req.Title).
		Str("template", name).
		Int("slides", len(slides)).
		Msg("Creating presentation")

	for i, spec := range slides {
		if i == 0 {
			err = s.addTitleSlide(deck, spec)
		} else {
			err = s.addContentSlide(ctx, deck, spec, result)
		}
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
	}

	data, err := s.save(deck)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publish(ctx, data, result)
	}

	log.Info().
		Str("path", result.Path).
		Str("url", result.URL).
		Int("slides", result.Slides).
		Int("images_placed", result.ImagesPlaced).
		Int("images_skipped", result.ImagesSkipped).
		Msg("Presentation saved")
	return result, nil
}

func (s *PresentationService) addTitleSlide(deck *pptx.Deck, spec outline.SlideSpec) error {
	slide, err := deck.AddSlide(titleLayout)
	if err != nil {
		return err
	}
	if err := slide.SetTitle(spec.Title); err != nil {
		log.Warn().Err(err).Msg("Title layout has no title placeholder")
	}
	if err := slide.SetPlaceholderText(bodyIdx, spec.Body); err != nil {
		log.Warn().Err(err).Msg("Title layout has no subtitle placeholder")
	}
	return nil
}

func (s *PresentationService) addContentSlide(ctx context.Context, deck *pptx.Deck, spec outline.SlideSpec, result *DeckResult) error {
	slide, err := deck.AddSlide(contentLayout)
	if err != nil {
		return err
	}
	if err := slide.SetTitle(spec.Title); err != nil {
		log.Warn().Err(err).Str("slide_title", spec.Title).Msg("Content layout has no title placeholder")
	}

	// Every picture takes the lower-right quadrant; several pictures stack.
	w, h := deck.SlideWidth(), deck.SlideHeight()
	for _, img := range spec.Images {
		data, err := s.fetcher.Fetch(ctx, img.URL)
		if err != nil {
			log.Warn().Err(err).Str("image_url", img.URL).Msg("Failed to download image")
			result.ImagesSkipped++
			continue
		}
		if data, err = imagefetch.Normalize(data); err != nil {
			log.Warn().Err(err).Str("image_url", img.URL).Msg("Downloaded file is not a usable image")
			result.ImagesSkipped++
			continue
		}
		if err := slide.AddPicture(data, w/2, h/2+imageTopOffset, w/2, h/2); err != nil {
			log.Warn().Err(err).Str("image_url", img.URL).Msg("Failed to add image to slide")
			result.ImagesSkipped++
			continue
		}
		log.Debug().Str("image_url", img.URL).Str("label", img.Label).Msg("Image added to slide")
		result.ImagesPlaced++
	}

	if err := slide.SetPlaceholderText(bodyIdx, spec.Body); err != nil {
		log.Warn().Err(err).Str("slide_title", spec.Title).Msg("Content layout has no body placeholder")
	}
	return nil
}

// save writes the deck to the output path and returns the written bytes.
func (s *PresentationService) save(deck *pptx.Deck) ([]byte, error) {
	var buf bytes.Buffer
	if err := deck.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode presentation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.outputPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("save presentation: %w", err)
	}
	return buf.Bytes(), nil
}

// publish uploads the saved deck. Failures are logged; the local file stays the result.
func (s *PresentationService) publish(ctx context.Context, data []byte, result *DeckResult) {
	key := "decks/" + uuid.New().String() + ".pptx"
	url, err := s.publisher.Put(ctx, key, data, pptxContentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to publish presentation")
		return
	}
	result.URL = url
}

// Latest returns the bytes of the most recently written deck.
func (s *PresentationService) Latest() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.ReadFile(s.outputPath)
}
