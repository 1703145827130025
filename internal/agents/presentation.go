package agents

import (
	"context"

	"github.com/snappy-loop/decks/internal/services"
)

// PresentationAgentImpl wraps services.PresentationService.
type PresentationAgentImpl struct {
	Service *services.PresentationService
}

// NewPresentationAgent returns a PresentationAgent backed by svc.
func NewPresentationAgent(svc *services.PresentationService) PresentationAgent {
	return &PresentationAgentImpl{Service: svc}
}

// CreatePresentation delegates to PresentationService.Create.
func (a *PresentationAgentImpl) CreatePresentation(ctx context.Context, req services.CreateRequest) (*services.DeckResult, error) {
	return a.Service.Create(ctx, req)
}

// ListTemplates delegates to PresentationService.ListTemplates.
func (a *PresentationAgentImpl) ListTemplates(ctx context.Context) ([]string, error) {
	return a.Service.ListTemplates(ctx)
}
