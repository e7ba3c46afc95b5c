package store

import (
	"context"
	"strconv"
	"strings"
)

// FormatVector renders vec as the bracketed float literal sqlite-vec's
// MATCH operator and INSERT both accept (§4.2), e.g. "[0.1,-0.2,0.3]".
func FormatVector(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// RankedChunkID is one row of a candidate set returned by a single
// retrieval channel (lexical or semantic), before RRF fusion (§4.4).
type RankedChunkID struct {
	ChunkID int64
	Rank    int // 1-based rank within this channel
}

// VectorKNN returns the k nearest chunk ids to queryVec by the vec0
// table's distance metric, ranked 1..k (§4.1, §4.4).
func VectorKNN(ctx context.Context, q Querier, queryVec []float32, k int) ([]RankedChunkID, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT chunk_id FROM chunk_embeddings
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance`,
		FormatVector(queryVec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankedChunkID
	rank := 0
	for rows.Next() {
		rank++
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, RankedChunkID{ChunkID: id, Rank: rank})
	}
	return out, rows.Err()
}

// FTSTopN returns the n best-matching chunk ids for the given FTS5
// MATCH query string, ranked by bm25 ascending (lower is better), ties
// broken by lower chunk id (§4.4, §8 scenario 3).
func FTSTopN(ctx context.Context, q Querier, matchQuery string, n int) ([]RankedChunkID, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT rowid FROM chunks_fts
		WHERE chunks_fts MATCH ?
		ORDER BY bm25(chunks_fts), rowid
		LIMIT ?`,
		matchQuery, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankedChunkID
	rank := 0
	for rows.Next() {
		rank++
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, RankedChunkID{ChunkID: id, Rank: rank})
	}
	return out, rows.Err()
}

// ChunkFilter narrows a hydrated result set by item-level attributes
// (§4.4: filter by source_type and/or tags).
type ChunkFilter struct {
	SourceType string
	Tags       []string
}

// HydratedChunk is a chunk joined with its owning item's identity, used
// once retriever has settled on a final ranked id list and needs full
// records to return (§4.4).
type HydratedChunk struct {
	ChunkID    int64
	ItemID     int64
	SourceURI  string
	Title      *string
	SourceType *string
	ChunkKey   *string
	ChunkIndex int
	Text       string
	Meta       *string
}

// HydrateChunks loads full chunk+item records for the given ids,
// preserving the caller's id order, and applies filter if non-nil.
func HydrateChunks(ctx context.Context, q Querier, ids []int64, filter *ChunkFilter) ([]HydratedChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+2)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := `
		SELECT c.id, c.item_id, i.source_uri, i.title, i.source_type, c.chunk_key, c.chunk_index, c.text, c.meta
		FROM chunk c
		JOIN item i ON i.id = c.item_id
		WHERE c.id IN (` + strings.Join(placeholders, ",") + `)`

	if filter != nil && filter.SourceType != "" {
		query += ` AND i.source_type = ?`
		args = append(args, filter.SourceType)
	}
	if filter != nil && len(filter.Tags) > 0 {
		tagPlaceholders := make([]string, len(filter.Tags))
		for i, t := range filter.Tags {
			tagPlaceholders[i] = "?"
			args = append(args, t)
		}
		query += ` AND i.id IN (SELECT item_id FROM tag WHERE tag IN (` + strings.Join(tagPlaceholders, ",") + `))`
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]HydratedChunk, len(ids))
	for rows.Next() {
		var h HydratedChunk
		if err := rows.Scan(&h.ChunkID, &h.ItemID, &h.SourceURI, &h.Title, &h.SourceType, &h.ChunkKey, &h.ChunkIndex, &h.Text, &h.Meta); err != nil {
			return nil, err
		}
		byID[h.ChunkID] = h
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]HydratedChunk, 0, len(ids))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}
