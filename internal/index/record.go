package index

import (
	"time"

	"github.com/dockb/dockb/internal/docstore"
)

// FromDocument builds an index record from a document.
//
// The denormalized updated_at must be usable for staleness comparison
// against the document's on-disk modification time, so when the
// frontmatter timestamp is absent, unparsable, or older than modTime
// (hand-edited files), modTime wins. The verbatim frontmatter is kept in
// the metadata blob either way.
func FromDocument(doc *docstore.Document, modTime time.Time) (*Record, error) {
	metaYAML, err := docstore.EncodeMetadata(doc.Meta)
	if err != nil {
		return nil, err
	}

	updatedAt := doc.Meta.UpdatedAt
	if t, ok := doc.Meta.ParsedUpdatedAt(); !ok || t.Before(modTime) {
		updatedAt = modTime.UTC().Format(time.RFC3339Nano)
	}

	return &Record{
		Category:     string(doc.Category),
		Path:         doc.Path,
		Content:      doc.Content,
		Title:        doc.Meta.Title,
		Description:  doc.Meta.Description,
		Author:       doc.Meta.Author,
		CreatedAt:    doc.Meta.CreatedAt,
		UpdatedAt:    updatedAt,
		MetadataYAML: metaYAML,
		Tags:         doc.Meta.Tags,
	}, nil
}
