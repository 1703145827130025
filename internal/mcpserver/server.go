package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/snappy-loop/decks/internal/agents"
	"github.com/snappy-loop/decks/internal/services"
)

// Tool names exposed to agents.
const (
	ToolDrawImage          = "draw_image"
	ToolCreatePresentation = "create_presentation"
	ToolListTemplates      = "list_templates"
)

type drawImageInput struct {
	Description string `json:"description" jsonschema:"The description of the image to be drawn"`
}

type drawImageOutput struct {
	URL string `json:"url"`
}

type createPresentationInput struct {
	Title    string `json:"title" jsonschema:"The title of the presentation"`
	Subtitle string `json:"subtitle,omitempty" jsonschema:"The subtitle of the presentation"`
	Content  string `json:"content" jsonschema:"The content of the deck; every slide starts with #, images as ![label](url)"`
	Template string `json:"template,omitempty" jsonschema:"The presentation template from list_templates (default.pptx when omitted)"`
}

type listTemplatesOutput struct {
	Templates []string `json:"templates"`
}

// Server exposes the image and presentation agents as MCP tools.
type Server struct {
	imageAgent        agents.ImageAgent
	presentationAgent agents.PresentationAgent
	mcp               *mcp.Server
}

// NewServer returns a new MCP server that uses the given agents.
func NewServer(imageAgent agents.ImageAgent, presentationAgent agents.PresentationAgent, version string) *Server {
	s := &Server{
		imageAgent:        imageAgent,
		presentationAgent: presentationAgent,
		mcp:               mcp.NewServer(&mcp.Implementation{Name: "decks", Version: version}, nil),
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolDrawImage,
		Description: "Draw and return an image.",
	}, s.drawImage)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolCreatePresentation,
		Description: "Create a presentation deck (.pptx) from a title, subtitle and slide outline.",
	}, s.createPresentation)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolListTemplates,
		Description: "List available presentation templates (.ppt and .pptx).",
	}, s.listTemplates)

	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler returns the streamable HTTP handler.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

func (s *Server) drawImage(ctx context.Context, _ *mcp.CallToolRequest, in drawImageInput) (*mcp.CallToolResult, drawImageOutput, error) {
	url := s.imageAgent.DrawImage(ctx, in.Description)
	return textResult(url), drawImageOutput{URL: url}, nil
}

func (s *Server) createPresentation(ctx context.Context, _ *mcp.CallToolRequest, in createPresentationInput) (*mcp.CallToolResult, services.DeckResult, error) {
	res, err := s.presentationAgent.CreatePresentation(ctx, services.CreateRequest{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Content:  in.Content,
		Template: in.Template,
	})
	if err != nil {
		return nil, services.DeckResult{}, err
	}
	return textResult(res.Path), *res, nil
}

func (s *Server) listTemplates(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, listTemplatesOutput, error) {
	names, err := s.presentationAgent.ListTemplates(ctx)
	if err != nil {
		return nil, listTemplatesOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	raw, _ := json.Marshal(names)
	return textResult(string(raw)), listTemplatesOutput{Templates: names}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}
