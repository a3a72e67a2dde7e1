// Package kb ties the document store, index storage, scanner, and search
// engine together behind one service surface. The MCP layer and CLI call
// this package rather than the components directly.
package kb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dockb/dockb/internal/docstore"
	"github.com/dockb/dockb/internal/index"
	"github.com/dockb/dockb/internal/scanner"
	"github.com/dockb/dockb/internal/search"
)

// Service is the knowledge-base facade.
type Service struct {
	docs    docstore.Store
	index   *index.Store
	engine  *search.Engine
	scanner *scanner.Scanner
}

// New creates a service over the given components.
func New(docs docstore.Store, idx *index.Store, engine *search.Engine, sc *scanner.Scanner) (*Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if idx == nil {
		return nil, fmt.Errorf("index store is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("search engine is required")
	}
	if sc == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	return &Service{docs: docs, index: idx, engine: engine, scanner: sc}, nil
}

// CreateOrUpdate writes a document to disk and upserts its index record
// directly, bypassing the scanner. The document's UpdatedAt is stamped by
// the write path, keeping the index at least as fresh as the file.
func (s *Service) CreateOrUpdate(ctx context.Context, doc *docstore.Document) error {
	if err := s.docs.Write(ctx, doc); err != nil {
		return err
	}

	modTime, err := s.docs.LastModified(ctx, doc.Category, doc.Path)
	if err != nil {
		return err
	}

	rec, err := index.FromDocument(doc, modTime)
	if err != nil {
		return err
	}

	if err := s.index.Upsert(ctx, rec); err != nil {
		return err
	}

	slog.Debug("document_indexed",
		slog.String("category", string(doc.Category)),
		slog.String("path", doc.Path))
	return nil
}

// Get reads a document from the document store.
// Returns (nil, nil) when the document does not exist.
func (s *Service) Get(ctx context.Context, category docstore.Category, path string) (*docstore.Document, error) {
	return s.docs.Read(ctx, category, path)
}

// List returns document paths for a category, optionally under a subpath.
func (s *Service) List(ctx context.Context, category docstore.Category, subpath string) ([]string, error) {
	return s.docs.List(ctx, category, subpath)
}

// Delete removes a document from disk and from the index. Deleting an
// absent document is a no-op.
func (s *Service) Delete(ctx context.Context, category docstore.Category, path string) error {
	if remover, ok := s.docs.(docstore.Remover); ok {
		if err := remover.Remove(ctx, category, path); err != nil {
			return err
		}
	}
	return s.index.Remove(ctx, string(category), path)
}

// Search executes a query against the index.
func (s *Service) Search(ctx context.Context, query string, opts search.Options) ([]*search.Result, error) {
	return s.engine.Search(ctx, query, opts)
}

// ReindexDocument re-indexes a single document, used by the filesystem
// watcher. A document that no longer exists on disk is left alone: the
// index never removes records implicitly.
func (s *Service) ReindexDocument(ctx context.Context, category docstore.Category, path string) error {
	doc, err := s.docs.Read(ctx, category, path)
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	modTime, err := s.docs.LastModified(ctx, category, path)
	if err != nil {
		return err
	}

	rec, err := index.FromDocument(doc, modTime)
	if err != nil {
		return err
	}
	return s.index.Upsert(ctx, rec)
}

// Reindex runs one reconciliation pass and returns its report.
func (s *Service) Reindex(ctx context.Context) (*scanner.Report, error) {
	return s.scanner.Scan(ctx)
}

// IndexCount returns the number of indexed records.
func (s *Service) IndexCount(ctx context.Context) (int, error) {
	return s.index.Count(ctx)
}
