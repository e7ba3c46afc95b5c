// Package facade implements the four thin tool operations of §4.5:
// search, add, delete, get, plus stats. The HTTP server (internal/api)
// and the CLI (cmd/uridx) call these operations through it; the CLI's
// ingest command also uses internal/ingest's JSONL decoder and calls the
// façade's Pipeline directly.
package facade

import (
	"context"
	"errors"
	"fmt"

	"github.com/GonzoDMX/uridx/internal/ingest"
	"github.com/GonzoDMX/uridx/internal/retriever"
	"github.com/GonzoDMX/uridx/internal/store"
)

// Facade composes the ingestion pipeline and retriever behind input
// validation and structured error surfacing (§4.5, §7).
type Facade struct {
	Engine    *store.Engine
	Pipeline  *ingest.Pipeline
	Retriever *retriever.Retriever
}

// SearchParams are the façade's search arguments (§4.5).
type SearchParams struct {
	Query      string
	Limit      int
	SourceType string
	Tags       []string
	// Semantic toggles the vector search channel; defaults to true so
	// callers that don't set it explicitly keep hybrid behavior.
	Semantic *bool
}

// SearchResultRow is one row of a search response.
type SearchResultRow struct {
	SourceURI  string
	Title      *string
	SourceType *string
	ChunkKey   *string
	ChunkIndex int
	Text       string
	Score      float64
}

// Search validates params and runs the hybrid retriever (§4.5, §4.4).
func (f *Facade) Search(ctx context.Context, p SearchParams) ([]SearchResultRow, error) {
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 1000 {
		return nil, fmt.Errorf("limit must be <= 1000, got %d", p.Limit)
	}

	semantic := p.Semantic == nil || *p.Semantic

	results, err := f.Retriever.Search(ctx, retriever.Query{
		Text:       p.Query,
		Limit:      p.Limit,
		SourceType: p.SourceType,
		Tags:       p.Tags,
		Semantic:   semantic,
	})
	if err != nil {
		return nil, err
	}

	out := make([]SearchResultRow, len(results))
	for i, r := range results {
		out[i] = SearchResultRow{
			SourceURI:  r.SourceURI,
			Title:      r.Title,
			SourceType: r.SourceType,
			ChunkKey:   r.ChunkKey,
			ChunkIndex: r.ChunkIndex,
			Text:       r.Text,
			Score:      r.Score,
		}
	}
	return out, nil
}

// AddParams are the façade's add arguments (§4.5). add always issues a
// single-chunk, non-replace ingestion.
type AddParams struct {
	SourceURI  string
	Title      string
	Text       string
	SourceType string
	Tags       []string
	Context    string
}

// AddResult mirrors §4.5's {status:"added", source_uri, title}.
type AddResult struct {
	Status    string
	SourceURI string
	Title     string
}

// Add validates params and ingests a single chunk (§4.5).
func (f *Facade) Add(ctx context.Context, p AddParams) (AddResult, error) {
	if p.SourceURI == "" {
		return AddResult{}, fmt.Errorf("source_uri must not be empty")
	}

	sourceType := p.SourceType
	if sourceType == "" {
		sourceType = "note"
	}

	var title, context *string
	if p.Title != "" {
		title = &p.Title
	}
	if p.Context != "" {
		context = &p.Context
	}

	rec := ingest.Record{
		SourceURI:  p.SourceURI,
		Title:      title,
		SourceType: &sourceType,
		Context:    context,
		Tags:       p.Tags,
		Chunks:     []ingest.ChunkInput{{Text: p.Text}},
		Replace:    false,
	}

	if _, err := f.Pipeline.Upsert(ctx, rec); err != nil {
		return AddResult{}, err
	}

	return AddResult{Status: "added", SourceURI: p.SourceURI, Title: p.Title}, nil
}

// DeleteResult mirrors §4.5's {status: "deleted"|"not_found", source_uri}.
type DeleteResult struct {
	Status    string
	SourceURI string
}

// Delete removes the item at sourceURI, returning status "not_found"
// rather than an error when it does not exist (§7 NotFound).
func (f *Facade) Delete(ctx context.Context, sourceURI string) (DeleteResult, error) {
	if sourceURI == "" {
		return DeleteResult{}, fmt.Errorf("source_uri must not be empty")
	}

	err := f.Pipeline.Delete(ctx, sourceURI)
	if errors.Is(err, store.ErrNotFound) {
		return DeleteResult{Status: "not_found", SourceURI: sourceURI}, nil
	}
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Status: "deleted", SourceURI: sourceURI}, nil
}

// ItemView is the full item returned by get (§4.5).
type ItemView struct {
	SourceURI  string
	Title      *string
	SourceType *string
	Context    *string
	Tags       []string
	Chunks     []ChunkView
}

// ChunkView is one chunk within an ItemView.
type ChunkView struct {
	ChunkKey   *string
	ChunkIndex int
	Text       string
	Meta       *string
}

// Get returns the full item view for sourceURI, or (nil, nil) if not
// found (§4.5 "full item view or null", §7 NotFound).
func (f *Facade) Get(ctx context.Context, sourceURI string) (*ItemView, error) {
	if sourceURI == "" {
		return nil, fmt.Errorf("source_uri must not be empty")
	}

	item, err := store.GetItemBySourceURI(ctx, f.Engine.DB(), sourceURI)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	chunks, err := store.ListChunksByItem(ctx, f.Engine.DB(), item.ID)
	if err != nil {
		return nil, err
	}
	tags, err := store.LoadTags(ctx, f.Engine.DB(), item.ID)
	if err != nil {
		return nil, err
	}

	view := &ItemView{
		SourceURI:  item.SourceURI,
		Title:      item.Title,
		SourceType: item.SourceType,
		Context:    item.Context,
		Tags:       tags,
	}
	for _, c := range chunks {
		view.Chunks = append(view.Chunks, ChunkView{
			ChunkKey:   c.ChunkKey,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Meta:       c.Meta,
		})
	}
	return view, nil
}

// Stats exposes store.GetStats through the façade (§4.1 stats()), filled
// in with the engine's embedding model and dimension.
func (f *Facade) Stats(ctx context.Context) (store.Stats, error) {
	s, err := store.GetStats(ctx, f.Engine.DB())
	if err != nil {
		return s, err
	}
	s.EmbedModel = f.Engine.EmbedModel
	s.EmbedDimension = f.Engine.Dimension
	return s, nil
}
