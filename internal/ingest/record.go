// Package ingest implements the transactional upsert/merge/replace
// algorithm of spec §4.3 and the startup repair scan it requires.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/GonzoDMX/uridx/internal/uerr"
)

// ChunkInput is one entry of an IngestionRecord's "chunks" array (§6.1).
type ChunkInput struct {
	Text string         `json:"text"`
	Key  *string        `json:"key,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Record is the line-delimited JSON ingestion record of §6.1.
type Record struct {
	SourceURI  string       `json:"source_uri"`
	Title      *string      `json:"title,omitempty"`
	SourceType *string      `json:"source_type,omitempty"`
	Context    *string      `json:"context,omitempty"`
	Tags       []string     `json:"tags,omitempty"`
	Chunks     []ChunkInput `json:"chunks,omitempty"`
	Replace    bool         `json:"replace,omitempty"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
}

// Validate checks the invariants §6.1/§7 InputError names: a nonempty
// source_uri. Empty chunk text is validated per-chunk by the pipeline
// (each bad chunk is skipped, not the whole record — §4.3 edge cases).
func (r Record) Validate() error {
	if r.SourceURI == "" {
		return uerr.NewInputError(0, "missing source_uri")
	}
	return nil
}

// DecodeJSONL reads one Record per non-blank line from r, calling fn for
// each successfully parsed and validated record. Malformed lines are
// reported to onError (§7 InputError) and do not stop the scan — matching
// the Python CLI's "continues with the next line" behavior.
func DecodeJSONL(r io.Reader, onError func(error), fn func(Record) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			if onError != nil {
				onError(uerr.NewInputError(lineNo, fmt.Sprintf("malformed JSON: %v", err)))
			}
			continue
		}

		if err := rec.Validate(); err != nil {
			if onError != nil {
				onError(fmt.Errorf("line %d: %w", lineNo, err))
			}
			continue
		}

		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}
