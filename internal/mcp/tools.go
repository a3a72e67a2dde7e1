package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dockb/dockb/internal/docstore"
	"github.com/dockb/dockb/internal/search"
)

// SearchDocsInput defines the input schema for the search_docs tool.
type SearchDocsInput struct {
	Query          string `json:"query" jsonschema:"the search query; empty or * returns all documents matching the filters"`
	Category       string `json:"category,omitempty" jsonschema:"restrict to one category, e.g. reference-doc or project-spec"`
	Subcategory    string `json:"subcategory,omitempty" jsonschema:"restrict to paths under this language or project name"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"include document bodies and highlighted match excerpts"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of results, default unlimited"`
}

// DocOutput is one document in tool output.
type DocOutput struct {
	Category    string   `json:"category" jsonschema:"document category"`
	Path        string   `json:"path" jsonschema:"path relative to the category root"`
	Title       string   `json:"title" jsonschema:"document title"`
	Description string   `json:"description,omitempty" jsonschema:"document description"`
	Author      string   `json:"author,omitempty" jsonschema:"document author"`
	Tags        []string `json:"tags,omitempty" jsonschema:"document tags"`
	UpdatedAt   string   `json:"updated_at,omitempty" jsonschema:"last update timestamp"`
	Content     string   `json:"content,omitempty" jsonschema:"document body, present when include_content is set"`
	Excerpts    []string `json:"excerpts,omitempty" jsonschema:"highlighted match excerpts"`
}

// SearchDocsOutput defines the output schema for the search_docs tool.
type SearchDocsOutput struct {
	Results []DocOutput `json:"results" jsonschema:"matching documents in ranked order"`
}

func (s *Server) searchDocsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchDocsInput) (
	*mcp.CallToolResult,
	SearchDocsOutput,
	error,
) {
	results, err := s.service.Search(ctx, input.Query, search.Options{
		Category:       input.Category,
		Subcategory:    input.Subcategory,
		IncludeContent: input.IncludeContent,
		Limit:          input.Limit,
	})
	if err != nil {
		return nil, SearchDocsOutput{}, MapError(err)
	}

	output := SearchDocsOutput{Results: make([]DocOutput, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, DocOutput{
			Category:    r.Record.Category,
			Path:        r.Record.Path,
			Title:       r.Record.Title,
			Description: r.Record.Description,
			Author:      r.Record.Author,
			Tags:        r.Record.Tags,
			UpdatedAt:   r.Record.UpdatedAt,
			Content:     r.Record.Content,
			Excerpts:    r.Excerpts,
		})
	}

	return nil, output, nil
}

// ListDocsInput defines the input schema for the list_docs tool.
type ListDocsInput struct {
	Category string `json:"category" jsonschema:"category to list, e.g. reference-doc or project-spec"`
	Subpath  string `json:"subpath,omitempty" jsonschema:"restrict listing to this subdirectory"`
}

// ListDocsOutput defines the output schema for the list_docs tool.
type ListDocsOutput struct {
	Paths []string `json:"paths" jsonschema:"document paths relative to the category root"`
}

func (s *Server) listDocsHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListDocsInput) (
	*mcp.CallToolResult,
	ListDocsOutput,
	error,
) {
	if input.Category == "" {
		return nil, ListDocsOutput{}, NewInvalidParamsError("category parameter is required")
	}

	paths, err := s.service.List(ctx, docstore.Category(input.Category), input.Subpath)
	if err != nil {
		return nil, ListDocsOutput{}, MapError(err)
	}

	if paths == nil {
		paths = []string{}
	}
	return nil, ListDocsOutput{Paths: paths}, nil
}

// ReadDocInput defines the input schema for the read_doc tool.
type ReadDocInput struct {
	Category string `json:"category" jsonschema:"document category"`
	Path     string `json:"path" jsonschema:"path relative to the category root"`
}

// ReadDocOutput defines the output schema for the read_doc tool.
type ReadDocOutput struct {
	Document DocOutput `json:"document" jsonschema:"the requested document with content"`
}

func (s *Server) readDocHandler(ctx context.Context, _ *mcp.CallToolRequest, input ReadDocInput) (
	*mcp.CallToolResult,
	ReadDocOutput,
	error,
) {
	if input.Category == "" || input.Path == "" {
		return nil, ReadDocOutput{}, NewInvalidParamsError("category and path parameters are required")
	}

	doc, err := s.service.Get(ctx, docstore.Category(input.Category), input.Path)
	if err != nil {
		return nil, ReadDocOutput{}, MapError(err)
	}
	if doc == nil {
		return nil, ReadDocOutput{}, NewDocumentNotFoundError(input.Category, input.Path)
	}

	return nil, ReadDocOutput{Document: DocOutput{
		Category:    string(doc.Category),
		Path:        doc.Path,
		Title:       doc.Meta.Title,
		Description: doc.Meta.Description,
		Author:      doc.Meta.Author,
		Tags:        doc.Meta.Tags,
		UpdatedAt:   doc.Meta.UpdatedAt,
		Content:     doc.Content,
	}}, nil
}

// WriteDocInput defines the input schema for the write_doc tool.
type WriteDocInput struct {
	Category    string   `json:"category" jsonschema:"document category"`
	Path        string   `json:"path" jsonschema:"path relative to the category root"`
	Content     string   `json:"content" jsonschema:"markdown document body"`
	Title       string   `json:"title,omitempty" jsonschema:"document title"`
	Description string   `json:"description,omitempty" jsonschema:"document description"`
	Author      string   `json:"author,omitempty" jsonschema:"document author"`
	Tags        []string `json:"tags,omitempty" jsonschema:"document tags"`
}

// WriteDocOutput defines the output schema for the write_doc tool.
type WriteDocOutput struct {
	Category  string `json:"category" jsonschema:"document category"`
	Path      string `json:"path" jsonschema:"document path"`
	UpdatedAt string `json:"updated_at" jsonschema:"stamped update timestamp"`
}

func (s *Server) writeDocHandler(ctx context.Context, _ *mcp.CallToolRequest, input WriteDocInput) (
	*mcp.CallToolResult,
	WriteDocOutput,
	error,
) {
	if input.Category == "" || input.Path == "" {
		return nil, WriteDocOutput{}, NewInvalidParamsError("category and path parameters are required")
	}

	doc := &docstore.Document{
		Category: docstore.Category(input.Category),
		Path:     input.Path,
		Content:  input.Content,
		Meta: docstore.Metadata{
			Title:       input.Title,
			Description: input.Description,
			Author:      input.Author,
			Tags:        input.Tags,
		},
	}

	if err := s.service.CreateOrUpdate(ctx, doc); err != nil {
		return nil, WriteDocOutput{}, MapError(err)
	}

	return nil, WriteDocOutput{
		Category:  input.Category,
		Path:      input.Path,
		UpdatedAt: doc.Meta.UpdatedAt,
	}, nil
}

// ReindexInput defines the input schema for the reindex tool.
type ReindexInput struct{}

// ReindexOutput defines the output schema for the reindex tool.
type ReindexOutput struct {
	Indexed int      `json:"indexed" jsonschema:"documents newly indexed or refreshed"`
	Skipped int      `json:"skipped" jsonschema:"documents already current"`
	Failed  int      `json:"failed" jsonschema:"documents that could not be processed"`
	Errors  []string `json:"errors,omitempty" jsonschema:"per-document error messages"`
}

func (s *Server) reindexHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ReindexInput) (
	*mcp.CallToolResult,
	ReindexOutput,
	error,
) {
	report, err := s.service.Reindex(ctx)
	if err != nil {
		return nil, ReindexOutput{}, MapError(err)
	}

	output := ReindexOutput{
		Indexed: report.Indexed,
		Skipped: report.Skipped,
		Failed:  report.Failed,
	}
	for _, scanErr := range report.Errors {
		output.Errors = append(output.Errors, scanErr.String())
	}

	return nil, output, nil
}
