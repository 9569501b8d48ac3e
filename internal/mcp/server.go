package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mike-a-ellis/careerbase/internal/assistant"
	"github.com/mike-a-ellis/careerbase/internal/kb"
	"github.com/mike-a-ellis/careerbase/internal/retrieval"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies. Assistant may be nil when no Gemini
// credentials are configured; the assistant tools are then not registered
// and the knowledge-base tools remain available.
type Config struct {
	Repository *kb.Repository
	Retriever  *retrieval.Service
	Assistant  *assistant.Client
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "careerbase-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_snippet",
		Description: "Store a career artifact (resume, cover letter, project note, bio, or skill) in the knowledge base.",
	}, makeSaveHandler(cfg.Repository))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_snippet",
		Description: "Retrieve one stored snippet by id, with its full content.",
	}, makeGetHandler(cfg.Repository))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_snippets",
		Description: "List every snippet in the knowledge base (id, category, title).",
	}, makeListHandler(cfg.Repository))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_snippet",
		Description: "Delete a snippet and every chunk belonging to it.",
	}, makeDeleteHandler(cfg.Repository))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Semantically search the knowledge base and return a formatted context block of the most relevant snippets.",
	}, makeRetrieveHandler(cfg.Retriever))

	if cfg.Assistant != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "tailor_resume",
			Description: "Critique a resume against a target job description, grounded on the stored knowledge base.",
		}, makeTailorResumeHandler(cfg.Assistant, cfg.Retriever))

		mcp.AddTool(server, &mcp.Tool{
			Name:        "critique_cover_letter",
			Description: "Critique a cover letter draft against a target job description, grounded on the stored knowledge base.",
		}, makeCritiqueLetterHandler(cfg.Assistant, cfg.Retriever))

		mcp.AddTool(server, &mcp.Tool{
			Name:        "answer_question",
			Description: "Draft an answer to a job application question from the user's stored experience.",
		}, makeAnswerHandler(cfg.Assistant, cfg.Retriever))
	}

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that need to wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
