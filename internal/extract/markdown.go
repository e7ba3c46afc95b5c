// Package extract produces §6.1 ingestion records from source files.
// Extractors are standalone producers: they never call internal/ingest
// directly, only emit records that a separate ingest step consumes
// (§6.1, §6.3 "extract | ingest" pipe pattern).
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var headingLine = regexp.MustCompile(`^#{1,6}\s+.+$`)
var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a markdown heading into a stable chunk_key, mirroring
// the original extractor's slug rules: strip leading '#'s, lowercase,
// collapse non-alphanumerics to '-', trim to 50 chars.
func slugify(heading string) string {
	if heading == "" {
		return "untitled"
	}
	text := strings.TrimLeft(heading, "# ")
	text = strings.ToLower(text)
	text = nonSlugChars.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if len(text) > 50 {
		text = text[:50]
	}
	if text == "" {
		return "untitled"
	}
	return text
}

// MarkdownChunk is one heading-delimited section of a markdown document.
type MarkdownChunk struct {
	Text    string
	Key     string
	Heading string
}

// ParseMarkdown splits content into one chunk per heading-delimited
// section (the heading line plus the body text up to the next heading,
// at any of depths 1-6). A document with no headings becomes a single
// "full" chunk; a leading body with no heading becomes a
// "section-0"-keyed chunk.
func ParseMarkdown(content string) []MarkdownChunk {
	lines := strings.Split(content, "\n")

	var chunks []MarkdownChunk
	var heading string
	var body []string
	sawHeading := false

	flush := func() {
		if heading == "" && len(strings.Join(body, "")) == 0 {
			return
		}
		var parts []string
		if heading != "" {
			parts = append(parts, heading)
		}
		bodyText := strings.TrimSpace(strings.Join(body, "\n"))
		if bodyText != "" {
			parts = append(parts, bodyText)
		}
		text := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if text == "" {
			return
		}
		key := fmt.Sprintf("section-%d", len(chunks))
		if heading != "" {
			key = slugify(heading)
		}
		chunks = append(chunks, MarkdownChunk{Text: text, Key: key, Heading: heading})
	}

	for _, line := range lines {
		if headingLine.MatchString(line) {
			flush()
			sawHeading = true
			heading = strings.TrimSpace(line)
			body = nil
		} else {
			body = append(body, line)
		}
	}
	flush()

	if !sawHeading {
		chunks = nil
		if text := strings.TrimSpace(content); text != "" {
			chunks = append(chunks, MarkdownChunk{Text: text, Key: "full"})
		}
	}
	return chunks
}

// Markdown reads path and returns a §6.1 Record ready for ingestion,
// tagged "markdown"/"document" and flagged Replace so re-running the
// extractor over an edited file fully refreshes its chunk set.
func Markdown(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	parsed := ParseMarkdown(string(data))
	chunks := make([]ChunkOut, len(parsed))
	for i, c := range parsed {
		chunks[i] = ChunkOut{
			Text: c.Text,
			Key:  c.Key,
			Meta: map[string]any{"heading": c.Heading},
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sourceType := "markdown"
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	ctxBytes, err := json.Marshal(map[string]string{"path": abs})
	if err != nil {
		return Record{}, fmt.Errorf("encode context: %w", err)
	}
	ctxStr := string(ctxBytes)

	return Record{
		SourceURI:  "file://" + abs,
		Title:      &title,
		SourceType: &sourceType,
		Context:    &ctxStr,
		Tags:       []string{"markdown", "document"},
		Chunks:     chunks,
		Replace:    true,
	}, nil
}
