package extract

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind is which extractor a file's contents should be routed to.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindPDF      Kind = "pdf"
	KindUnknown  Kind = "unknown"
)

var extensionKind = map[string]Kind{
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".pdf":      KindPDF,
}

// DetectKind sniffs the first 512 bytes of path alongside its
// extension, the way a content-type allow-list should: the extension
// narrows the candidate set, and the MIME sniff confirms the content
// actually matches rather than trusting a renamed file.
func DetectKind(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	kind, known := extensionKind[ext]
	if !known {
		return KindUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	header := make([]byte, 512)
	n, _ := f.Read(header)
	mime := http.DetectContentType(header[:n])

	switch kind {
	case KindPDF:
		if mime == "application/pdf" {
			return KindPDF, nil
		}
		return KindUnknown, nil
	case KindMarkdown:
		if strings.HasPrefix(mime, "text/plain") || strings.HasPrefix(mime, "text/") {
			return KindMarkdown, nil
		}
		return KindUnknown, nil
	}
	return KindUnknown, nil
}

// Extract dispatches path to the Markdown or PDF extractor by detected
// kind (§6.3's "uridx extract" command).
func Extract(path string) (Record, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return Record{}, err
	}
	switch kind {
	case KindMarkdown:
		return Markdown(path)
	case KindPDF:
		return PDF(path)
	default:
		return Record{}, &UnsupportedError{Path: path}
	}
}

// UnsupportedError marks a file extract couldn't classify.
type UnsupportedError struct {
	Path string
}

func (e *UnsupportedError) Error() string {
	return "unsupported file type: " + e.Path
}
