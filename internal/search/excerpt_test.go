package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockb/dockb/internal/index"
)

func TestHighlight_WrapsMatchesInBold(t *testing.T) {
	got, ok := highlight("map filter reduce", []string{"filter"})
	require.True(t, ok)
	assert.Equal(t, "map **filter** reduce", got)
}

func TestHighlight_CaseInsensitive(t *testing.T) {
	got, ok := highlight("GET POST users", []string{"users"})
	require.True(t, ok)
	assert.Equal(t, "GET POST **users**", got)
}

func TestHighlight_MultipleOccurrences(t *testing.T) {
	got, ok := highlight("go here, go there", []string{"go"})
	require.True(t, ok)
	assert.Equal(t, "**go** here, **go** there", got)
}

func TestHighlight_MultipleTerms(t *testing.T) {
	got, ok := highlight("map filter reduce", []string{"map", "reduce"})
	require.True(t, ok)
	assert.Equal(t, "**map** filter **reduce**", got)
}

func TestHighlight_OverlappingTermsMergeMarkers(t *testing.T) {
	// "filter" and "ilt" overlap; markers must not nest
	got, ok := highlight("map filter reduce", []string{"filter", "ilt"})
	require.True(t, ok)
	assert.Equal(t, "map **filter** reduce", got)
}

func TestHighlight_AdjacentTermsMergeMarkers(t *testing.T) {
	got, ok := highlight("mapfilter", []string{"map", "filter"})
	require.True(t, ok)
	assert.Equal(t, "**mapfilter**", got)
}

func TestHighlight_NoMatch(t *testing.T) {
	got, ok := highlight("append extend", []string{"map"})
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = highlight("", []string{"map"})
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestBuildExcerpts_TitleThenContentThenDescription(t *testing.T) {
	rec := &index.Record{
		Title:       "Array Methods",
		Content:     "intro line\nuse map on arrays\nmap again later",
		Description: "array transformation helpers",
	}

	excerpts := buildExcerpts(rec, []string{"array", "map"})
	require.Len(t, excerpts, 3)
	assert.Equal(t, "**Array** Methods", excerpts[0])
	// Only the first matching content line is excerpted
	assert.Equal(t, "use **map** on **array**s", excerpts[1])
	assert.Equal(t, "**array** transformation helpers", excerpts[2])
}

func TestBuildExcerpts_ContentOnlyMatch(t *testing.T) {
	rec := &index.Record{
		Title:   "List Operations",
		Content: "first line\nappend extend here",
	}

	excerpts := buildExcerpts(rec, []string{"append"})
	require.Len(t, excerpts, 1)
	assert.Equal(t, "**append** extend here", excerpts[0])
}

func TestSearch_TagOnlyMatchYieldsNoExcerpts(t *testing.T) {
	store, err := index.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	engine, err := NewEngine(store)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, &index.Record{
		Category: "reference-doc", Path: "js/array.md",
		Title: "Array Methods", Content: "map filter reduce",
		Tags: []string{"javascript"},
	}))

	results, err := engine.Search(ctx, "javascript", Options{IncludeContent: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Excerpts)
}
