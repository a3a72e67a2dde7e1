package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockb/dockb/internal/docstore"
	"github.com/dockb/dockb/internal/index"
	"github.com/dockb/dockb/internal/scanner"
	"github.com/dockb/dockb/internal/search"
)

func newTestService(t *testing.T) (*Service, *docstore.FSStore, *index.Store) {
	t.Helper()

	docs, err := docstore.NewFSStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, docs.EnsureLayout())

	idx, err := index.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	engine, err := search.NewEngine(idx)
	require.NoError(t, err)

	sc, err := scanner.New(docs, idx)
	require.NoError(t, err)

	service, err := New(docs, idx, engine, sc)
	require.NoError(t, err)
	return service, docs, idx
}

func TestService_CreateOrUpdate_IndexesImmediately(t *testing.T) {
	service, _, idx := newTestService(t)
	ctx := context.Background()

	doc := &docstore.Document{
		Category: docstore.CategoryReference,
		Path:     "js/array.md",
		Content:  "map filter reduce",
		Meta:     docstore.Metadata{Title: "Array Methods"},
	}
	require.NoError(t, service.CreateOrUpdate(ctx, doc))

	// Searchable without a scan
	results, err := service.Search(ctx, "map", search.Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "js/array.md", results[0].Record.Path)

	rec, err := idx.Get(ctx, "reference-doc", "js/array.md")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Array Methods", rec.Title)
}

func TestService_CreateOrUpdate_ThenScanSkips(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	doc := &docstore.Document{
		Category: docstore.CategoryProjectSpec,
		Path:     "proj1/api.md",
		Content:  "GET POST users",
		Meta:     docstore.Metadata{Title: "API Design"},
	}
	require.NoError(t, service.CreateOrUpdate(ctx, doc))

	// A direct write leaves the index current, so the scanner skips it
	report, err := service.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
}

func TestService_GetAndList(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.CreateOrUpdate(ctx, &docstore.Document{
		Category: docstore.CategoryReference,
		Path:     "go/errors.md",
		Content:  "wrap errors",
		Meta:     docstore.Metadata{Title: "Errors"},
	}))

	doc, err := service.Get(ctx, docstore.CategoryReference, "go/errors.md")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Errors", doc.Meta.Title)

	absent, err := service.Get(ctx, docstore.CategoryReference, "nope.md")
	require.NoError(t, err)
	assert.Nil(t, absent)

	paths, err := service.List(ctx, docstore.CategoryReference, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"go/errors.md"}, paths)
}

func TestService_Delete_RemovesFileAndIndexRecord(t *testing.T) {
	service, docs, idx := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.CreateOrUpdate(ctx, &docstore.Document{
		Category: docstore.CategoryReference,
		Path:     "go/errors.md",
		Content:  "wrap errors",
		Meta:     docstore.Metadata{Title: "Errors"},
	}))

	require.NoError(t, service.Delete(ctx, docstore.CategoryReference, "go/errors.md"))

	doc, err := docs.Read(ctx, docstore.CategoryReference, "go/errors.md")
	require.NoError(t, err)
	assert.Nil(t, doc)

	rec, err := idx.Get(ctx, "reference-doc", "go/errors.md")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Deleting again stays a no-op
	assert.NoError(t, service.Delete(ctx, docstore.CategoryReference, "go/errors.md"))
}

func TestService_ReindexDocument(t *testing.T) {
	service, docs, idx := newTestService(t)
	ctx := context.Background()

	require.NoError(t, docs.Write(ctx, &docstore.Document{
		Category: docstore.CategoryReference,
		Path:     "go/http.md",
		Content:  "request response",
		Meta:     docstore.Metadata{Title: "HTTP"},
	}))

	require.NoError(t, service.ReindexDocument(ctx, docstore.CategoryReference, "go/http.md"))

	rec, err := idx.Get(ctx, "reference-doc", "go/http.md")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "HTTP", rec.Title)
}

func TestService_ReindexDocument_AbsentIsNoOp(t *testing.T) {
	service, _, idx := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.ReindexDocument(ctx, docstore.CategoryReference, "ghost.md"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_Reindex_FullPass(t *testing.T) {
	service, docs, _ := newTestService(t)
	ctx := context.Background()

	for _, doc := range []*docstore.Document{
		{Category: docstore.CategoryReference, Path: "js/array.md", Content: "map filter reduce", Meta: docstore.Metadata{Title: "Array Methods"}},
		{Category: docstore.CategoryReference, Path: "py/list.md", Content: "append extend", Meta: docstore.Metadata{Title: "List Operations"}},
		{Category: docstore.CategoryProjectSpec, Path: "proj1/api.md", Content: "GET POST users", Meta: docstore.Metadata{Title: "API Design"}},
	} {
		require.NoError(t, docs.Write(ctx, doc))
	}

	report, err := service.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Indexed)

	count, err := service.IndexCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Category-filtered wildcard search sees only the reference documents
	results, err := service.Search(ctx, "*", search.Options{Category: "reference-doc"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestNew_RequiresAllComponents(t *testing.T) {
	service, docs, idx := newTestService(t)
	_ = service

	engine, err := search.NewEngine(idx)
	require.NoError(t, err)
	sc, err := scanner.New(docs, idx)
	require.NoError(t, err)

	_, err = New(nil, idx, engine, sc)
	assert.Error(t, err)
	_, err = New(docs, nil, engine, sc)
	assert.Error(t, err)
	_, err = New(docs, idx, nil, sc)
	assert.Error(t, err)
	_, err = New(docs, idx, engine, nil)
	assert.Error(t, err)
}
