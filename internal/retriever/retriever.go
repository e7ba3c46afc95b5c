// Package retriever implements the hybrid search operation of §4.4:
// reciprocal-rank fusion over independent lexical (FTS5 bm25) and
// semantic (vec0 KNN) candidate sets.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/GonzoDMX/uridx/internal/embed"
	"github.com/GonzoDMX/uridx/internal/store"
)

// RRFConstant is the "C" smoothing constant in 1/(C+rank) (§4.4).
const RRFConstant = 60

// OversampleFactor (K) — each channel requests K*limit candidates before
// fusion, so filtering and fusion have enough of a pool to work with
// (§4.4).
const OversampleFactor = 5

// Query describes a single hybrid search call (§4.4, §6.2).
type Query struct {
	Text       string
	Limit      int
	SourceType string
	Tags       []string
	// Semantic controls whether the vector channel runs at all. When
	// false, the query is never embedded and the semantic candidate set
	// is empty, leaving a keyword-only (FTS5) search.
	Semantic bool
}

// Result is one ranked, hydrated chunk (§4.4, §6.2).
type Result struct {
	store.HydratedChunk
	Score float64
}

// Retriever composes store.Engine (for FTS/vector candidate lookup and
// hydration) with an embed.Client (to embed the query text).
type Retriever struct {
	Engine *store.Engine
	Embed  embed.Client
	Model  string
}

// Search runs the hybrid retrieval pipeline: embed the query, fetch
// K*limit candidates from each channel, fuse by RRF, hydrate, filter,
// and return the top Limit results ordered by descending fused score
// with ties broken by the lower chunk id (§4.4, §8 scenario 3).
func (r *Retriever) Search(ctx context.Context, q Query) ([]Result, error) {
	if q.Limit <= 0 || q.Limit > 1000 {
		return nil, fmt.Errorf("limit must be between 1 and 1000, got %d", q.Limit)
	}

	oversample := q.Limit * OversampleFactor

	var semantic []store.RankedChunkID
	if q.Semantic {
		vectors, err := r.Embed.Embed(ctx, r.Model, []string{q.Text})
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}

		semantic, err = store.VectorKNN(ctx, r.Engine.DB(), vectors[0], oversample)
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
	}

	lexical, err := store.FTSTopN(ctx, r.Engine.DB(), ftsMatchQuery(q.Text), oversample)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}

	fused := fuse(semantic, lexical)

	ids := make([]int64, len(fused))
	for i, f := range fused {
		ids[i] = f.chunkID
	}

	var filter *store.ChunkFilter
	if q.SourceType != "" || len(q.Tags) > 0 {
		filter = &store.ChunkFilter{SourceType: q.SourceType, Tags: q.Tags}
	}

	hydrated, err := store.HydrateChunks(ctx, r.Engine.DB(), ids, filter)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	scoreByID := make(map[int64]float64, len(fused))
	for _, f := range fused {
		scoreByID[f.chunkID] = f.score
	}

	results := make([]Result, 0, len(hydrated))
	for _, h := range hydrated {
		results = append(results, Result{HydratedChunk: h, Score: scoreByID[h.ChunkID]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

type fusedCandidate struct {
	chunkID int64
	score   float64
}

// fuse combines two ranked candidate channels by reciprocal rank
// fusion: score(id) = sum over channels containing id of 1/(C+rank).
// A chunk present in only one channel is still scored and returned.
func fuse(channels ...[]store.RankedChunkID) []fusedCandidate {
	scores := make(map[int64]float64)
	order := make([]int64, 0)
	seen := make(map[int64]bool)

	for _, channel := range channels {
		for _, rc := range channel {
			if !seen[rc.ChunkID] {
				seen[rc.ChunkID] = true
				order = append(order, rc.ChunkID)
			}
			scores[rc.ChunkID] += 1.0 / float64(RRFConstant+rc.Rank)
		}
	}

	out := make([]fusedCandidate, len(order))
	for i, id := range order {
		out[i] = fusedCandidate{chunkID: id, score: scores[id]}
	}
	return out
}
