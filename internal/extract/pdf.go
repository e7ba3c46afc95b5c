package extract

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"
)

// PDF reads path page by page, emitting one chunk per non-blank page
// (key "page-N", meta {"page_number": N}), tagged "pdf"/"document" and
// flagged Replace — mirroring the original pdfplumber-based extractor's
// page granularity rather than the teacher's whole-document text blob.
func PDF(path string) (Record, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("open pdf: %w", err)
	}

	var chunks []ChunkOut
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		chunks = append(chunks, ChunkOut{
			Text: text,
			Key:  fmt.Sprintf("page-%d", i),
			Meta: map[string]any{"page_number": i},
		})
	}

	if len(chunks) == 0 {
		return Record{}, fmt.Errorf("no extractable text in %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sourceType := "pdf"
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
		Tags:       []string{"pdf", "document"},
		Chunks:     chunks,
		Replace:    true,
	}, nil
}

// pageText concatenates the text runs on a single PDF page in layout
// order.
func pageText(page pdf.Page) (string, error) {
	content := page.Content()
	var b strings.Builder
	for _, t := range content.Text {
		b.WriteString(t.S)
	}
	return b.String(), nil
}
