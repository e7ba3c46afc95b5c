package retriever

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GonzoDMX/uridx/internal/store"
)

// refusingEmbedClient fails the test if Embed is ever called, used to
// prove a keyword-only (Semantic: false) search never touches the
// embedding provider.
type refusingEmbedClient struct {
	t   *testing.T
	dim int
}

func (c *refusingEmbedClient) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	c.t.Fatal("Embed should not be called when Query.Semantic is false")
	return nil, nil
}

func (c *refusingEmbedClient) Dimension(ctx context.Context, model string) (int, error) {
	return c.dim, nil
}

func TestFuseSumsReciprocalRanksAcrossChannels(t *testing.T) {
	semantic := []store.RankedChunkID{{ChunkID: 1, Rank: 1}, {ChunkID: 2, Rank: 2}}
	lexical := []store.RankedChunkID{{ChunkID: 2, Rank: 1}, {ChunkID: 3, Rank: 2}}

	got := fuse(semantic, lexical)

	scores := make(map[int64]float64, len(got))
	for _, c := range got {
		scores[c.chunkID] = c.score
	}

	require.Len(t, got, 3)
	assert.InDelta(t, 1.0/61.0, scores[1], 1e-9, "chunk 1 only appears in the semantic channel")
	assert.InDelta(t, 1.0/62.0+1.0/61.0, scores[2], 1e-9, "chunk 2 appears in both channels and should sum")
	assert.InDelta(t, 1.0/62.0, scores[3], 1e-9, "chunk 3 only appears in the lexical channel")
}

func TestFusePreservesFirstSeenOrder(t *testing.T) {
	semantic := []store.RankedChunkID{{ChunkID: 5, Rank: 1}}
	lexical := []store.RankedChunkID{{ChunkID: 9, Rank: 1}, {ChunkID: 5, Rank: 2}}

	got := fuse(semantic, lexical)

	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].chunkID)
	assert.Equal(t, int64(9), got[1].chunkID)
}

func TestSearchRejectsOutOfRangeLimit(t *testing.T) {
	r := &Retriever{}

	_, err := r.Search(nil, Query{Text: "x", Limit: 0})
	assert.Error(t, err)

	_, err = r.Search(nil, Query{Text: "x", Limit: 1001})
	assert.Error(t, err)
}

func TestSearchWithSemanticFalseNeverEmbedsTheQuery(t *testing.T) {
	ctx := context.Background()
	client := &refusingEmbedClient{t: t, dim: 4}

	dbPath := filepath.Join(t.TempDir(), "uridx.db")
	engine, err := store.Open(ctx, dbPath, "fake-model", client)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	r := &Retriever{Engine: engine, Embed: client, Model: "fake-model"}

	results, err := r.Search(ctx, Query{Text: "hello", Limit: 5, Semantic: false})
	require.NoError(t, err)
	assert.Empty(t, results, "no chunks ingested yet, so a keyword-only search finds nothing")
}
