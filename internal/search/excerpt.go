package search

import (
	"sort"
	"strings"

	"github.com/dockb/dockb/internal/index"
)

// boldMarker wraps matched substrings in excerpts.
const boldMarker = "**"

// buildExcerpts extracts highlighted match context for one record.
// Order: title excerpt (when the title contains a term), then the first
// content line containing a term, then a description excerpt. A record
// that matched only through a tag yields no excerpts, which is valid.
func buildExcerpts(rec *index.Record, terms []string) []string {
	var excerpts []string

	if line, ok := highlight(rec.Title, terms); ok {
		excerpts = append(excerpts, line)
	}

	for _, line := range strings.Split(rec.Content, "\n") {
		if highlighted, ok := highlight(line, terms); ok {
			excerpts = append(excerpts, highlighted)
			break
		}
	}

	if line, ok := highlight(rec.Description, terms); ok {
		excerpts = append(excerpts, line)
	}

	return excerpts
}

// highlight wraps every case-insensitive occurrence of any term in bold
// markers. Returns false when no term occurs in the text.
func highlight(text string, terms []string) (string, bool) {
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Rare Unicode case folding that changes byte length; index into
		// the lowered text so span offsets stay valid.
		text = lower
	}

	// Collect match intervals over the lowered text
	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		if term == "" {
			continue
		}
		for from := 0; ; {
			i := strings.Index(lower[from:], term)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, span{start: start, end: start + len(term)})
			from = start + len(term)
		}
	}
	if len(spans) == 0 {
		return "", false
	}

	// Merge overlapping or adjacent spans so markers never nest
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}

	var sb strings.Builder
	prev := 0
	for _, sp := range merged {
		sb.WriteString(text[prev:sp.start])
		sb.WriteString(boldMarker)
		sb.WriteString(text[sp.start:sp.end])
		sb.WriteString(boldMarker)
		prev = sp.end
	}
	sb.WriteString(text[prev:])

	return sb.String(), true
}
