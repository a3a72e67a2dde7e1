package docstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	kberrors "github.com/dockb/dockb/internal/errors"
)

// readCacheSize bounds the parsed-document cache. Entries are invalidated
// by modification time, so a small cache is enough for repeated reads
// during a scan.
const readCacheSize = 256

type cacheEntry struct {
	doc     *Document
	modTime time.Time
}

// FSStore is a filesystem-backed document store. Documents live under
// root/<categoryDir>/<path> as markdown files with YAML frontmatter.
type FSStore struct {
	root  string
	cache *lru.Cache[string, cacheEntry]
}

var (
	_ Store   = (*FSStore)(nil)
	_ Remover = (*FSStore)(nil)
)

// NewFSStore creates a store rooted at the given directory.
func NewFSStore(root string) (*FSStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve docs root: %w", err)
	}

	cache, err := lru.New[string, cacheEntry](readCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create read cache: %w", err)
	}

	return &FSStore{root: absRoot, cache: cache}, nil
}

// Root returns the absolute docs root directory.
func (s *FSStore) Root() string {
	return s.root
}

// EnsureLayout creates the root and category directories if missing.
func (s *FSStore) EnsureLayout() error {
	for _, cat := range s.Categories() {
		if err := os.MkdirAll(filepath.Join(s.root, cat.Dir()), 0o755); err != nil {
			return kberrors.Wrapf(kberrors.ErrCodeDocWrite, err, "failed to create category directory %s", cat)
		}
	}
	return nil
}

// Categories returns the categories this store manages.
func (s *FSStore) Categories() []Category {
	return []Category{CategoryReference, CategoryProjectSpec}
}

// List returns markdown document paths relative to the category root.
// A missing category directory means no documents, not an error; any other
// filesystem failure is surfaced so callers can distinguish "empty" from
// "listing failed".
func (s *FSStore) List(ctx context.Context, category Category, subpath string) ([]string, error) {
	base := filepath.Join(s.root, category.Dir())
	start := base
	if subpath != "" {
		cleaned, err := cleanRelPath(subpath)
		if err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeInvalidPath, err)
		}
		start = filepath.Join(base, cleaned)
	}

	if _, err := os.Stat(start); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Skip hidden directories (.git and friends)
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, kberrors.Wrapf(kberrors.ErrCodeDocList, err, "failed to list %s", category)
	}

	return paths, nil
}

// Read loads and parses a document. Returns (nil, nil) when absent.
// Parsed documents are cached keyed by modification time.
func (s *FSStore) Read(ctx context.Context, category Category, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := s.resolve(category, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, kberrors.Wrapf(kberrors.ErrCodeDocStat, err, "failed to stat %s/%s", category, path)
	}

	cacheKey := string(category) + "/" + path
	if entry, ok := s.cache.Get(cacheKey); ok && entry.modTime.Equal(info.ModTime()) {
		return entry.doc, nil
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, kberrors.Wrapf(kberrors.ErrCodeDocRead, err, "failed to read %s/%s", category, path)
	}

	meta, body, err := ParseFile(raw)
	if err != nil {
		return nil, kberrors.Wrapf(kberrors.ErrCodeDocFrontmatter, err, "failed to parse %s/%s", category, path)
	}

	doc := &Document{
		Category: category,
		Path:     path,
		Content:  body,
		Meta:     meta,
	}
	s.cache.Add(cacheKey, cacheEntry{doc: doc, modTime: info.ModTime()})

	return doc, nil
}

// LastModified returns the on-disk modification time of a document.
func (s *FSStore) LastModified(ctx context.Context, category Category, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	abs, err := s.resolve(category, path)
	if err != nil {
		return time.Time{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return time.Time{}, kberrors.Wrapf(kberrors.ErrCodeDocStat, err, "failed to stat %s/%s", category, path)
	}
	return info.ModTime(), nil
}

// Write persists a document, stamping UpdatedAt (and CreatedAt on first
// write) before serialization. The resulting metadata timestamp is always
// >= the file's modification time, which the scanner's staleness
// comparison depends on.
func (s *FSStore) Write(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := s.resolve(doc.Category, doc.Path)
	if err != nil {
		return err
	}

	if doc.Meta.Title == "" {
		doc.Meta.Title = PlaceholderTitle
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if doc.Meta.CreatedAt == "" {
		doc.Meta.CreatedAt = now
	}
	doc.Meta.UpdatedAt = now

	data, err := EncodeFile(doc.Meta, doc.Content)
	if err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeDocFrontmatter, err, "failed to serialize %s", doc.Key())
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeDocWrite, err, "failed to create directory for %s", doc.Key())
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return kberrors.Wrapf(kberrors.ErrCodeDocWrite, err, "failed to write %s", doc.Key())
	}

	// Align the file mtime with the stamped UpdatedAt so the scanner's
	// staleness comparison sees an exact tie and skips unchanged files.
	if stamped, ok := doc.Meta.ParsedUpdatedAt(); ok {
		_ = os.Chtimes(abs, stamped, stamped)
	}

	s.cache.Remove(string(doc.Category) + "/" + doc.Path)
	return nil
}

// Remove deletes a document file. Removing an absent document is a no-op.
func (s *FSStore) Remove(ctx context.Context, category Category, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := s.resolve(category, path)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return kberrors.Wrapf(kberrors.ErrCodeDocWrite, err, "failed to remove %s/%s", category, path)
	}

	s.cache.Remove(string(category) + "/" + path)
	return nil
}

// resolve maps a (category, path) pair to an absolute file path,
// rejecting traversal outside the category root.
func (s *FSStore) resolve(category Category, path string) (string, error) {
	cleaned, err := cleanRelPath(path)
	if err != nil {
		return "", kberrors.Wrap(kberrors.ErrCodeInvalidPath, err)
	}
	return filepath.Join(s.root, category.Dir(), cleaned), nil
}

// cleanRelPath validates a document-relative path.
func cleanRelPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes document root: %s", path)
	}
	return cleaned, nil
}
