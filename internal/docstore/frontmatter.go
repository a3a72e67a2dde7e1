package docstore

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PlaceholderTitle is used when a document's frontmatter has no title.
const PlaceholderTitle = "Untitled Document"

// frontmatterDelimiter separates YAML frontmatter from the markdown body.
const frontmatterDelimiter = "---"

// Field is one extra metadata key/value pair beyond the known fields.
// The yaml.Node value preserves scalars, sequences, and mappings verbatim
// so unknown metadata round-trips losslessly.
type Field struct {
	Key   string
	Value *yaml.Node
}

// Metadata is a document's frontmatter: the known structured subset plus
// an ordered list of extra fields preserved opaquely.
type Metadata struct {
	Title       string
	Description string
	Author      string
	Tags        []string
	// CreatedAt and UpdatedAt are ISO-8601 strings at this boundary;
	// callers parse them when temporal comparison is needed.
	CreatedAt string
	UpdatedAt string
	Extra     []Field
}

// ParsedUpdatedAt parses UpdatedAt as RFC3339.
// Returns false when the field is absent or unparsable.
func (m *Metadata) ParsedUpdatedAt() (time.Time, bool) {
	return ParseTimestamp(m.UpdatedAt)
}

// ParseTimestamp parses an ISO-8601 timestamp string in the formats
// documents carry. Returns false when absent or unparsable.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalYAML decodes a frontmatter mapping, routing known keys into
// struct fields and keeping everything else in Extra, in document order.
func (m *Metadata) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("frontmatter must be a mapping, got %v", node.Kind)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		switch keyNode.Value {
		case "title":
			if err := valNode.Decode(&m.Title); err != nil {
				return fmt.Errorf("invalid title: %w", err)
			}
		case "description":
			if err := valNode.Decode(&m.Description); err != nil {
				return fmt.Errorf("invalid description: %w", err)
			}
		case "author":
			if err := valNode.Decode(&m.Author); err != nil {
				return fmt.Errorf("invalid author: %w", err)
			}
		case "tags":
			if err := valNode.Decode(&m.Tags); err != nil {
				return fmt.Errorf("invalid tags: %w", err)
			}
		case "createdAt":
			if err := valNode.Decode(&m.CreatedAt); err != nil {
				return fmt.Errorf("invalid createdAt: %w", err)
			}
		case "updatedAt":
			if err := valNode.Decode(&m.UpdatedAt); err != nil {
				return fmt.Errorf("invalid updatedAt: %w", err)
			}
		default:
			m.Extra = append(m.Extra, Field{Key: keyNode.Value, Value: valNode})
		}
	}

	return nil
}

// MarshalYAML encodes the metadata back into a mapping node.
// Known fields come first, extras follow in their preserved order.
func (m Metadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	appendScalar := func(key, value string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}

	appendScalar("title", m.Title)
	if m.Description != "" {
		appendScalar("description", m.Description)
	}
	if m.Author != "" {
		appendScalar("author", m.Author)
	}
	if len(m.Tags) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, tag := range m.Tags {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: tag})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "tags"}, seq)
	}
	if m.CreatedAt != "" {
		appendScalar("createdAt", m.CreatedAt)
	}
	if m.UpdatedAt != "" {
		appendScalar("updatedAt", m.UpdatedAt)
	}
	for _, f := range m.Extra {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Key}, f.Value)
	}

	return node, nil
}

// EncodeMetadata serializes metadata to its frontmatter YAML text.
func EncodeMetadata(meta Metadata) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize frontmatter: %w", err)
	}
	return buf.String(), nil
}

// DecodeMetadata parses frontmatter YAML text into Metadata.
// A missing title is replaced with PlaceholderTitle.
func DecodeMetadata(raw string) (Metadata, error) {
	var meta Metadata
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return Metadata{}, err
	}
	if meta.Title == "" {
		meta.Title = PlaceholderTitle
	}
	return meta, nil
}

// ParseFile splits a raw document file into frontmatter metadata and body.
// Files without a frontmatter block yield placeholder metadata and the
// whole file as body.
func ParseFile(raw []byte) (Metadata, string, error) {
	text := string(raw)

	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") && text != frontmatterDelimiter {
		return Metadata{Title: PlaceholderTitle}, text, nil
	}

	rest := strings.TrimPrefix(text, frontmatterDelimiter+"\n")
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		// Unterminated frontmatter block is a malformed document
		return Metadata{}, "", fmt.Errorf("unterminated frontmatter block")
	}

	metaText := rest[:end]
	body := rest[end+len("\n"+frontmatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")

	meta, err := DecodeMetadata(metaText)
	if err != nil {
		return Metadata{}, "", fmt.Errorf("invalid frontmatter: %w", err)
	}

	return meta, body, nil
}

// EncodeFile serializes metadata and body back into a document file.
func EncodeFile(meta Metadata, body string) ([]byte, error) {
	metaText, err := EncodeMetadata(meta)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")
	buf.WriteString(metaText)
	buf.WriteString(frontmatterDelimiter + "\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}
