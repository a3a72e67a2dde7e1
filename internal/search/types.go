// Package search answers full-text and metadata queries over the indexed
// corpus: query parsing, term matching through the index projection,
// result ordering, and match-excerpt extraction.
package search

import (
	"github.com/dockb/dockb/internal/index"
)

// Options are the filters applied to a search.
// Zero values mean no restriction.
type Options struct {
	// Category restricts results to one partition.
	Category string

	// Subcategory restricts paths to those whose first segment equals
	// this value (the language or project name).
	Subcategory string

	// IncludeContent controls whether result bodies are returned and
	// whether match excerpts are computed. Matching always runs against
	// full content server-side regardless.
	IncludeContent bool

	// Limit caps the number of results. Zero means unlimited.
	Limit int
}

// Result is one search hit: the indexed document plus the highlighted
// match excerpts (empty for wildcard queries or tag-only matches).
type Result struct {
	Record   *index.Record
	Excerpts []string
}
