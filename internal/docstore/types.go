// Package docstore provides the on-disk document store: markdown documents
// with YAML frontmatter, organized by category directories.
package docstore

import (
	"context"
	"time"
)

// Category partitions the document namespace.
type Category string

const (
	// CategoryReference holds reference documentation (languages, libraries).
	CategoryReference Category = "reference-doc"
	// CategoryProjectSpec holds project specification documents.
	CategoryProjectSpec Category = "project-spec"
)

// Dir returns the directory name a category maps to under the docs root.
// Unknown categories map to their own string value so tests and future
// categories keep working without a registry change.
func (c Category) Dir() string {
	switch c {
	case CategoryReference:
		return "references"
	case CategoryProjectSpec:
		return "projects"
	default:
		return string(c)
	}
}

// Document is one knowledge-base document: markdown body plus frontmatter
// metadata, identified by (category, path).
type Document struct {
	Category Category
	// Path is relative to the category root, typically
	// "languageOrProject/relativeFile.md".
	Path    string
	Content string
	Meta    Metadata
}

// Key returns the document's external identity as a single string.
func (d *Document) Key() string {
	return string(d.Category) + "/" + d.Path
}

// Store is the document store interface the index core depends on.
// Read returns (nil, nil) when the document does not exist; listing and
// stat failures are returned as errors, never silent empty results.
type Store interface {
	// Categories returns the categories this store manages.
	Categories() []Category

	// List returns document paths relative to the category root.
	// subpath, when non-empty, restricts listing to that subdirectory.
	List(ctx context.Context, category Category, subpath string) ([]string, error)

	// Read loads a document. Absent documents return (nil, nil).
	Read(ctx context.Context, category Category, path string) (*Document, error)

	// LastModified returns the on-disk modification time of a document.
	LastModified(ctx context.Context, category Category, path string) (time.Time, error)

	// Write persists a document, stamping Meta.UpdatedAt before serialization
	// so the index staleness contract holds.
	Write(ctx context.Context, doc *Document) error
}

// Remover is implemented by stores that support explicit document
// deletion. Removing an absent document is a no-op.
type Remover interface {
	Remove(ctx context.Context, category Category, path string) error
}
