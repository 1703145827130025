package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/agents"
	"github.com/snappy-loop/decks/internal/auth"
	"github.com/snappy-loop/decks/internal/services"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// DeckReader returns the most recently written deck.
type DeckReader interface {
	Latest() ([]byte, error)
}

// Handler handles HTTP requests
type Handler struct {
	imageAgent        agents.ImageAgent
	presentationAgent agents.PresentationAgent
	decks             DeckReader
}

// NewHandler creates a new handler
func NewHandler(imageAgent agents.ImageAgent, presentationAgent agents.PresentationAgent, decks DeckReader) *Handler {
	return &Handler{
		imageAgent:        imageAgent,
		presentationAgent: presentationAgent,
		decks:             decks,
	}
}

// Router registers all routes. /healthz is public; /v1 goes through authService.
func (h *Handler) Router(authService *auth.Service) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(authService.Middleware)
	v1.HandleFunc("/images", h.DrawImage).Methods(http.MethodPost)
	v1.HandleFunc("/presentations", h.CreatePresentation).Methods(http.MethodPost)
	v1.HandleFunc("/presentations/latest", h.LatestPresentation).Methods(http.MethodGet)
	v1.HandleFunc("/templates", h.ListTemplates).Methods(http.MethodGet)
	v1.HandleFunc("/ws", h.AgentsWS).Methods(http.MethodGet)
	return r
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type drawImageRequest struct {
	Description string `json:"description"`
}

// DrawImage handles POST /v1/images
func (h *Handler) DrawImage(w http.ResponseWriter, r *http.Request) {
	var req drawImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeJSONError(w, http.StatusBadRequest, "description is required")
		return
	}

	url := h.imageAgent.DrawImage(r.Context(), req.Description)
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// CreatePresentation handles POST /v1/presentations
func (h *Handler) CreatePresentation(w http.ResponseWriter, r *http.Request) {
	var req services.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSONError(w, http.StatusBadRequest, "title is required")
		return
	}

	res, err := h.presentationAgent.CreatePresentation(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create presentation")
		writeJSONError(w, http.StatusInternalServerError, "failed to create presentation")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListTemplates handles GET /v1/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := h.presentationAgent.ListTemplates(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list templates")
		writeJSONError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"templates": names})
}

// LatestPresentation handles GET /v1/presentations/latest
func (h *Handler) LatestPresentation(w http.ResponseWriter, r *http.Request) {
	data, err := h.decks.Latest()
	if errors.Is(err, fs.ErrNotExist) {
		writeJSONError(w, http.StatusNotFound, "no presentation yet")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to read presentation")
		writeJSONError(w, http.StatusInternalServerError, "failed to read presentation")
		return
	}

	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="presentation.pptx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
