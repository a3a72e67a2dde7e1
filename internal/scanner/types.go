// Package scanner reconciles index storage with the on-disk document
// store: it compares recorded update times against file modification
// times and re-indexes only new or changed documents.
package scanner

import (
	"fmt"
	"sync"
	"time"

	"github.com/dockb/dockb/internal/docstore"
)

// ScanError records one per-document or per-category failure.
type ScanError struct {
	Category docstore.Category
	// Path is empty for category-level listing failures.
	Path    string
	Message string
}

// String returns a human-readable form of the error.
func (e ScanError) String() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("%s/%s: %s", e.Category, e.Path, e.Message)
}

// Report summarizes one reconciliation pass.
type Report struct {
	// Indexed counts new or changed documents written to the index.
	Indexed int
	// Skipped counts documents whose index entry was already current.
	Skipped int
	// Failed counts documents (or category listings) that errored.
	Failed int
	// Errors holds every captured failure.
	Errors []ScanError
	// Duration is how long the scan took.
	Duration time.Duration

	mu sync.Mutex
}

func (r *Report) addIndexed() {
	r.mu.Lock()
	r.Indexed++
	r.mu.Unlock()
}

func (r *Report) addSkipped() {
	r.mu.Lock()
	r.Skipped++
	r.mu.Unlock()
}

func (r *Report) addFailure(category docstore.Category, path string, err error) {
	r.mu.Lock()
	r.Failed++
	r.Errors = append(r.Errors, ScanError{
		Category: category,
		Path:     path,
		Message:  err.Error(),
	})
	r.mu.Unlock()
}
