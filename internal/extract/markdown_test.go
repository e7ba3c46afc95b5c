package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name    string
		heading string
		want    string
	}{
		{name: "simple heading", heading: "## Getting Started", want: "getting-started"},
		{name: "punctuation collapses to single dash", heading: "# Hello, World!!!", want: "hello-world"},
		{name: "empty heading", heading: "", want: "untitled"},
		{name: "heading with only punctuation", heading: "# !!!", want: "untitled"},
		{name: "long heading truncated to 50 chars", heading: "# " + repeat("a", 80), want: repeat("a", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.heading))
		})
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestParseMarkdownSplitsOnHeadings(t *testing.T) {
	content := "# Intro\nhello there\n\n## Details\nmore text\nsecond line\n"

	chunks := ParseMarkdown(content)

	require.Len(t, chunks, 2)
	assert.Equal(t, "intro", chunks[0].Key)
	assert.Contains(t, chunks[0].Text, "hello there")
	assert.Equal(t, "details", chunks[1].Key)
	assert.Contains(t, chunks[1].Text, "more text")
	assert.Contains(t, chunks[1].Text, "second line")
}

func TestParseMarkdownWithLeadingBodyAndNoHeadings(t *testing.T) {
	chunks := ParseMarkdown("just a plain paragraph, no headings here")

	require.Len(t, chunks, 1)
	assert.Equal(t, "full", chunks[0].Key)
}

func TestParseMarkdownEmptyContent(t *testing.T) {
	chunks := ParseMarkdown("   \n\n  ")
	assert.Empty(t, chunks)
}

func TestParseMarkdownLeadingBodyBeforeFirstHeading(t *testing.T) {
	content := "preamble text\n\n# First Heading\nbody\n"

	chunks := ParseMarkdown(content)

	require.Len(t, chunks, 2)
	assert.Equal(t, "section-0", chunks[0].Key)
	assert.Contains(t, chunks[0].Text, "preamble text")
	assert.Equal(t, "first-heading", chunks[1].Key)
}
