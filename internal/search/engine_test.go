package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockb/dockb/internal/index"
)

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *index.Store) {
	t.Helper()
	store, err := index.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := NewEngine(store, opts...)
	require.NoError(t, err)
	return engine, store
}

// seedThreeDocs indexes the canonical small corpus used across tests:
// two reference documents and one project spec.
func seedThreeDocs(t *testing.T, store *index.Store) {
	t.Helper()
	ctx := context.Background()

	recs := []*index.Record{
		{
			Category: "reference-doc", Path: "js/array.md",
			Content: "map filter reduce", Title: "Array Methods",
		},
		{
			Category: "reference-doc", Path: "py/list.md",
			Content: "append extend", Title: "List Operations",
		},
		{
			Category: "project-spec", Path: "proj1/api.md",
			Content: "GET POST users", Title: "API Design",
		},
	}
	for _, rec := range recs {
		require.NoError(t, store.Upsert(ctx, rec))
	}
}

func paths(results []*Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Record.Path)
	}
	return out
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine(nil)
	assert.Error(t, err)
}

func TestSearch_SingleTerm(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)

	results, err := engine.Search(context.Background(), "map", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "js/array.md", results[0].Record.Path)
}

func TestSearch_TermsAreANDed(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)
	ctx := context.Background()

	// Both terms in the same document
	results, err := engine.Search(ctx, "users api", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "proj1/api.md", results[0].Record.Path)

	// Terms from different documents match nothing
	results, err = engine.Search(ctx, "map append", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)

	results, err := engine.Search(context.Background(), "USERS", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "proj1/api.md", results[0].Record.Path)
}

func TestSearch_WildcardListsByTitle(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)
	ctx := context.Background()

	results, err := engine.Search(ctx, "*", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj1/api.md", "js/array.md", "py/list.md"}, paths(results))

	// Empty and all-whitespace queries behave the same
	results, err = engine.Search(ctx, "", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = engine.Search(ctx, "   ", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_WildcardWithCategoryFilter(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)

	results, err := engine.Search(context.Background(), "*", Options{Category: "reference-doc"})
	require.NoError(t, err)
	// Ordered by title: "Array Methods" < "List Operations"
	assert.Equal(t, []string{"js/array.md", "py/list.md"}, paths(results))
}

func TestSearch_SubcategoryFilter(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)
	ctx := context.Background()

	results, err := engine.Search(ctx, "*", Options{
		Category:    "project-spec",
		Subcategory: "proj1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj1/api.md"}, paths(results))

	results, err = engine.Search(ctx, "*", Options{Subcategory: "js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"js/array.md"}, paths(results))
}

func TestSearch_EmptyCorpus(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	results, err := engine.Search(ctx, "*", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = engine.Search(ctx, "anything", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TitleMatchesRankFirst(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	// "Zebra Guide" matches in the title; "Aardvark Notes" only in the body.
	// Title match wins despite its later lexical position.
	require.NoError(t, store.Upsert(ctx, &index.Record{
		Category: "reference-doc", Path: "a.md",
		Title: "Aardvark Notes", Content: "the zebra crossed",
	}))
	require.NoError(t, store.Upsert(ctx, &index.Record{
		Category: "reference-doc", Path: "z.md",
		Title: "Zebra Guide", Content: "striped",
	}))

	results, err := engine.Search(ctx, "zebra", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Zebra Guide", results[0].Record.Title)
	assert.Equal(t, "Aardvark Notes", results[1].Record.Title)
}

func TestSearch_ContentSuppression(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)
	ctx := context.Background()

	full, err := engine.Search(ctx, "map", Options{IncludeContent: true})
	require.NoError(t, err)
	suppressed, err := engine.Search(ctx, "map", Options{IncludeContent: false})
	require.NoError(t, err)

	// Same result set and order, matching still ran against full content
	require.Equal(t, paths(full), paths(suppressed))
	assert.Equal(t, "map filter reduce", full[0].Record.Content)
	assert.Empty(t, suppressed[0].Record.Content)
	assert.Empty(t, suppressed[0].Excerpts)
}

func TestSearch_SuppressionDoesNotMutateIndex(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)
	ctx := context.Background()

	_, err := engine.Search(ctx, "map", Options{IncludeContent: false})
	require.NoError(t, err)

	// A later read still sees the full body
	rec, err := store.Get(ctx, "reference-doc", "js/array.md")
	require.NoError(t, err)
	assert.Equal(t, "map filter reduce", rec.Content)
}

func TestSearch_LimitCapsResults(t *testing.T) {
	engine, store := newTestEngine(t)
	seedThreeDocs(t, store)
	ctx := context.Background()

	results, err := engine.Search(ctx, "*", Options{Limit: 2})
	require.NoError(t, err)
	// The cap keeps the first two in title order
	assert.Equal(t, []string{"proj1/api.md", "js/array.md"}, paths(results))
}

func TestSearch_MaxResultsDefaultApplies(t *testing.T) {
	engine, store := newTestEngine(t, WithMaxResults(1))
	seedThreeDocs(t, store)
	ctx := context.Background()

	results, err := engine.Search(ctx, "*", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// An explicit limit overrides the default cap
	results, err = engine.Search(ctx, "*", Options{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_MetadataFieldsMatch(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &index.Record{
		Category: "reference-doc", Path: "go/http.md",
		Title: "HTTP Clients", Content: "request response",
		Description: "Timeout and retry guidance",
		Tags:        []string{"networking", "stdlib"},
	}))

	// Description field
	results, err := engine.Search(ctx, "retry", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// Tag field
	results, err = engine.Search(ctx, "networking", Options{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestParseTerms(t *testing.T) {
	assert.Nil(t, parseTerms(""))
	assert.Nil(t, parseTerms("   "))
	assert.Nil(t, parseTerms("*"))
	assert.Equal(t, []string{"map", "filter"}, parseTerms("  Map   FILTER "))
	// "*" only acts as a wildcard when it is the entire query
	assert.Equal(t, []string{"*", "map"}, parseTerms("* map"))
}
