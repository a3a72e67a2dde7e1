package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/dockb/dockb/internal/config"
	"github.com/dockb/dockb/internal/docstore"
	"github.com/dockb/dockb/internal/index"
	"github.com/dockb/dockb/internal/kb"
	"github.com/dockb/dockb/internal/mcp"
	"github.com/dockb/dockb/internal/scanner"
	"github.com/dockb/dockb/internal/search"
	"github.com/dockb/dockb/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var watch bool
	var skipScan bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Start the knowledge-base MCP server.

On startup the index is reconciled with on-disk documents, then the
server answers document tools over stdio until interrupted.

Examples:
  dockb serve
  dockb serve --watch
  dockb serve --skip-scan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), watch, skipScan)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-index documents as they change on disk")
	cmd.Flags().BoolVar(&skipScan, "skip-scan", false, "Skip the startup reconciliation scan")

	return cmd
}

func runServe(ctx context.Context, watch, skipScan bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One server instance per data dir; a second one would fight over
	// the same index database.
	if err := os.MkdirAll(cfg.Index.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.Index.DataDir, "dockb.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire data dir lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another dockb instance is already serving %s", cfg.Index.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	service, idx, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if !skipScan {
		report, err := service.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("startup scan failed: %w", err)
		}
		slog.Info("startup_scan",
			slog.Int("indexed", report.Indexed),
			slog.Int("skipped", report.Skipped),
			slog.Int("failed", report.Failed))
	}

	if watch || cfg.Watcher.Enabled {
		w, err := watcher.New(cfg.Docs.Root, time.Duration(cfg.Watcher.DebounceMS)*time.Millisecond)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		go func() {
			if err := w.Start(); err != nil {
				slog.Error("watcher_failed", slog.String("error", err.Error()))
			}
		}()
		go func() {
			for event := range w.Events() {
				if err := service.ReindexDocument(ctx, event.Category, event.Path); err != nil {
					slog.Warn("watch_reindex_failed",
						slog.String("category", string(event.Category)),
						slog.String("path", event.Path),
						slog.String("error", err.Error()))
				}
			}
		}()
		defer func() { _ = w.Stop() }()
	}

	server, err := mcp.NewServer(service)
	if err != nil {
		return err
	}

	count, _ := idx.Count(ctx)
	slog.Info("serving",
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("index", cfg.IndexPath()),
		slog.Int("documents", count))

	return server.Serve(ctx)
}

// buildService wires the document store, index, scanner, and search
// engine into a service. The returned cleanup closes the index.
func buildService(cfg *config.Config) (*kb.Service, *index.Store, func(), error) {
	docs, err := docstore.NewFSStore(cfg.Docs.Root)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := docs.EnsureLayout(); err != nil {
		return nil, nil, nil, err
	}

	idx, err := index.Open(cfg.IndexPath())
	if err != nil {
		return nil, nil, nil, err
	}

	engine, err := search.NewEngine(idx, search.WithMaxResults(cfg.Search.MaxResults))
	if err != nil {
		_ = idx.Close()
		return nil, nil, nil, err
	}

	sc, err := scanner.New(docs, idx, scanner.WithWorkers(cfg.Scanner.Workers))
	if err != nil {
		_ = idx.Close()
		return nil, nil, nil, err
	}

	service, err := kb.New(docs, idx, engine, sc)
	if err != nil {
		_ = idx.Close()
		return nil, nil, nil, err
	}

	return service, idx, func() { _ = idx.Close() }, nil
}
