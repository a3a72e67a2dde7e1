package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dockb/dockb/internal/docstore"
	"github.com/dockb/dockb/internal/index"
)

// IndexStore is the slice of index storage the scanner depends on.
type IndexStore interface {
	Snapshot(ctx context.Context) (map[index.Key]index.RecordMeta, error)
	Upsert(ctx context.Context, rec *index.Record) error
}

// Scanner walks the document store and brings index storage into
// alignment with it. Safe to run repeatedly; an unchanged corpus yields
// zero indexed documents on the second pass.
type Scanner struct {
	docs    docstore.Store
	index   IndexStore
	workers int
}

// Option configures the scanner.
type Option func(*Scanner)

// WithWorkers sets the number of concurrent document workers.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a scanner over the given stores.
func New(docs docstore.Store, idx IndexStore, opts ...Option) (*Scanner, error) {
	if docs == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if idx == nil {
		return nil, fmt.Errorf("index store is required")
	}

	s := &Scanner{
		docs:    docs,
		index:   idx,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan runs one reconciliation pass and returns its report.
//
// Every per-document failure (stat, read, upsert) and per-category
// listing failure is captured in the report and processing continues;
// only an unreachable index (snapshot failure) aborts the scan.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	start := time.Now()

	snapshot, err := s.index.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load index snapshot: %w", err)
	}

	report := &Report{}

	for _, category := range s.docs.Categories() {
		paths, err := s.docs.List(ctx, category, "")
		if err != nil {
			slog.Warn("scan_listing_failed",
				slog.String("category", string(category)),
				slog.String("error", err.Error()))
			report.addFailure(category, "", err)
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for _, path := range paths {
			g.Go(func() error {
				s.reconcile(gctx, snapshot, category, path, report)
				return nil
			})
		}
		// Workers never return errors; isolation is per document
		_ = g.Wait()

		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	report.Duration = time.Since(start)

	slog.Info("scan_complete",
		slog.Int("indexed", report.Indexed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// reconcile brings one document up to date in the index.
func (s *Scanner) reconcile(ctx context.Context, snapshot map[index.Key]index.RecordMeta, category docstore.Category, path string, report *Report) {
	modTime, err := s.docs.LastModified(ctx, category, path)
	if err != nil {
		report.addFailure(category, path, err)
		return
	}

	if meta, ok := snapshot[index.Key{Category: string(category), Path: path}]; ok {
		// Tie counts as unchanged: fewer re-indexes beats staleness paranoia
		if recorded, parsed := docstore.ParseTimestamp(meta.UpdatedAt); parsed && !recorded.Before(modTime) {
			report.addSkipped()
			return
		}
	}

	doc, err := s.docs.Read(ctx, category, path)
	if err != nil {
		report.addFailure(category, path, err)
		return
	}
	if doc == nil {
		report.addFailure(category, path, fmt.Errorf("document disappeared during scan"))
		return
	}

	rec, err := index.FromDocument(doc, modTime)
	if err != nil {
		report.addFailure(category, path, err)
		return
	}

	if err := s.index.Upsert(ctx, rec); err != nil {
		report.addFailure(category, path, err)
		return
	}

	report.addIndexed()
}
