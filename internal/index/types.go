// Package index provides the persistent, queryable projection of the
// document store: a SQLite database holding one row per indexed document,
// its tag associations, and an FTS5 search projection kept in lockstep.
package index

// Record is the persisted, queryable representation of one document.
// (Category, Path) is the external identity; ID is a surrogate key.
type Record struct {
	ID       int64
	Category string
	Path     string

	// Denormalized searchable fields, copied from document metadata.
	Content     string
	Title       string
	Description string
	Author      string
	CreatedAt   string
	UpdatedAt   string

	// MetadataYAML is the full frontmatter blob, serialized verbatim
	// for lossless round-trip.
	MetadataYAML string

	// Tags mirror the metadata tags array, order preserved.
	Tags []string
}

// Key identifies a record by its external identity.
type Key struct {
	Category string
	Path     string
}

// RecordMeta is the per-record slice of a metadata snapshot, enough for
// the scanner's staleness comparison without reading full content.
type RecordMeta struct {
	ID        int64
	UpdatedAt string
}

// Query is the low-level storage query executed against the index.
// Terms must already be lowercased; an empty Terms slice selects every
// record matching the filters (the wildcard path).
type Query struct {
	// Terms are matched as literal case-insensitive substrings, AND
	// across terms, OR across {content, title, description, tags} per
	// term. Characters special to the storage query language are
	// escaped, never interpreted.
	Terms []string

	// Category restricts results to one partition when non-empty.
	Category string

	// SubcategoryPrefix restricts paths to those whose first segment
	// equals the given value.
	SubcategoryPrefix string
}
