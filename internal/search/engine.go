package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dockb/dockb/internal/index"
)

// wildcardToken is the query token that selects every record matching
// the structural filters.
const wildcardToken = "*"

// Engine executes queries against index storage.
type Engine struct {
	store      *index.Store
	maxResults int
}

// EngineOption configures the search engine.
type EngineOption func(*Engine)

// WithMaxResults caps result counts when the caller passes no explicit
// limit. Zero means unlimited.
func WithMaxResults(n int) EngineOption {
	return func(e *Engine) {
		e.maxResults = n
	}
}

// NewEngine creates a search engine reading from the given index store.
func NewEngine(store *index.Store, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("index store is required")
	}
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search executes a query with the given filters.
//
// An empty query or a single "*" token returns every record matching the
// filters, ordered by title. Otherwise the query is split on whitespace
// into lowercase terms; a record matches when every term appears as a
// case-insensitive substring in at least one of content, title,
// description, or a tag. Term-path ordering puts records whose title
// matches a term before body-only matches, lexically by title within
// each group.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]*Result, error) {
	terms := parseTerms(query)

	recs, err := e.store.Select(ctx, index.Query{
		Terms:             terms,
		Category:          opts.Category,
		SubcategoryPrefix: opts.Subcategory,
	})
	if err != nil {
		return nil, err
	}

	orderResults(recs, terms)

	limit := opts.Limit
	if limit <= 0 {
		limit = e.maxResults
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	results := make([]*Result, 0, len(recs))
	for _, rec := range recs {
		r := &Result{Record: rec}
		if opts.IncludeContent {
			if len(terms) > 0 {
				r.Excerpts = buildExcerpts(rec, terms)
			}
		} else {
			// Body suppressed; matching already ran against full content
			blanked := *rec
			blanked.Content = ""
			r.Record = &blanked
		}
		results = append(results, r)
	}

	return results, nil
}

// parseTerms splits a query into lowercase terms. An empty query, a single
// wildcard token, or a query that is all whitespace yields no terms, which
// selects the wildcard path.
func parseTerms(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) == 1 && fields[0] == wildcardToken {
		return nil
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, strings.ToLower(f))
	}
	return terms
}

// orderResults sorts records for presentation. The wildcard path (no
// terms) orders lexically by title. The term path puts title matches
// first, then orders lexically by title within each group.
func orderResults(recs []*index.Record, terms []string) {
	if len(terms) == 0 {
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].Title < recs[j].Title
		})
		return
	}

	rank := func(rec *index.Record) int {
		title := strings.ToLower(rec.Title)
		for _, term := range terms {
			if strings.Contains(title, term) {
				return 0
			}
		}
		return 1
	}

	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := rank(recs[i]), rank(recs[j])
		if ri != rj {
			return ri < rj
		}
		return recs[i].Title < recs[j].Title
	})
}
