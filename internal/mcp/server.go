package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dockb/dockb/internal/kb"
	"github.com/dockb/dockb/pkg/version"
)

// Server is the MCP server for dockb. It exposes the knowledge base to
// AI clients as document tools over stdio.
type Server struct {
	mcp     *mcp.Server
	service *kb.Service
	logger  *slog.Logger
}

// NewServer creates a new MCP server over the given service.
func NewServer(service *kb.Service) (*Server, error) {
	if service == nil {
		return nil, errors.New("service is required")
	}

	s := &Server{
		service: service,
		logger:  slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "dockb",
			Version: version.Version,
		},
		nil, // ServerOptions - capabilities are inferred from registered tools
	)

	s.registerTools()

	return s, nil
}

// registerTools registers the document tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_docs",
		Description: "Search the knowledge base by full text and metadata. Supports category and subcategory filters, and returns highlighted match excerpts when content is included.",
	}, s.searchDocsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_docs",
		Description: "List document paths in a category, optionally under a subdirectory.",
	}, s.listDocsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "read_doc",
		Description: "Read one document's content and metadata by category and path.",
	}, s.readDocHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "write_doc",
		Description: "Create or update a document. The document is written to disk and indexed immediately.",
	}, s.writeDocHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reindex",
		Description: "Reconcile the index with on-disk documents. Returns counts of indexed, skipped, and failed documents.",
	}, s.reindexHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 5))
}

// Serve runs the server over stdio until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}
