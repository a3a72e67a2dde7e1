package index

import (
	"context"
	"strings"

	kberrors "github.com/dockb/dockb/internal/errors"
)

// likeEscape is the escape character used in LIKE patterns.
const likeEscape = `\`

// escapeLikeTerm escapes LIKE metacharacters in a user-supplied term so the
// term is always matched as literal text, never as pattern syntax.
func escapeLikeTerm(term string) string {
	r := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return r.Replace(term)
}

// containsPattern builds a case-insensitive substring LIKE pattern.
func containsPattern(term string) string {
	return "%" + escapeLikeTerm(term) + "%"
}

// Select executes a storage query and returns matching records with tags
// loaded. Term matching runs against the FTS projection columns; the
// wildcard path (no terms) reads the documents table directly. Result
// order is unspecified; callers apply their own ordering.
func (s *Store) Select(ctx context.Context, q Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, kberrors.Newf(kberrors.ErrCodeStorageClosed, "index is closed")
	}

	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT d.id, d.category, d.path, d.content, d.title, d.description, d.author, d.created_at, d.updated_at, d.metadata
		FROM documents d`)
	if len(q.Terms) > 0 {
		sb.WriteString(` JOIN documents_fts f ON f.document_id = d.id`)
	}
	sb.WriteString(` WHERE 1=1`)

	if q.Category != "" {
		sb.WriteString(` AND d.category = ?`)
		args = append(args, q.Category)
	}
	if q.SubcategoryPrefix != "" {
		sb.WriteString(` AND d.path LIKE ? ESCAPE '\'`)
		args = append(args, escapeLikeTerm(q.SubcategoryPrefix)+"/%")
	}

	// AND across terms, OR across projection fields per term
	for _, term := range q.Terms {
		pattern := containsPattern(term)
		sb.WriteString(` AND (f.content LIKE ? ESCAPE '\' OR f.title LIKE ? ESCAPE '\'` +
			` OR f.description LIKE ? ESCAPE '\' OR f.tags LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeStorageQuery, err)
	}

	if err := s.loadTags(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}
