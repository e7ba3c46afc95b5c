package facade

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GonzoDMX/uridx/internal/retriever"
	"github.com/GonzoDMX/uridx/internal/store"
)

// These cover the façade's own input validation (§4.5), which returns
// before touching the pipeline/retriever/store — safe to exercise
// against a zero-value Facade.

func TestSearchRejectsLimitAboveMax(t *testing.T) {
	f := &Facade{}

	_, err := f.Search(nil, SearchParams{Query: "x", Limit: 5000})

	assert.Error(t, err)
}

func TestAddRejectsEmptySourceURI(t *testing.T) {
	f := &Facade{}

	_, err := f.Add(nil, AddParams{Text: "hello"})

	assert.Error(t, err)
}

func TestDeleteRejectsEmptySourceURI(t *testing.T) {
	f := &Facade{}

	_, err := f.Delete(nil, "")

	assert.Error(t, err)
}

func TestGetRejectsEmptySourceURI(t *testing.T) {
	f := &Facade{}

	_, err := f.Get(nil, "")

	assert.Error(t, err)
}

// trackingEmbedClient records whether Embed was called, so tests can
// assert on the façade's Semantic default without depending on what a
// real embedding provider returns.
type trackingEmbedClient struct {
	dim    int
	called bool
}

func (c *trackingEmbedClient) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	c.called = true
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, c.dim)
	}
	return out, nil
}

func (c *trackingEmbedClient) Dimension(ctx context.Context, model string) (int, error) {
	return c.dim, nil
}

func newTestFacade(t *testing.T, client *trackingEmbedClient) *Facade {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "uridx.db")

	engine, err := store.Open(ctx, dbPath, "fake-model", client)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return &Facade{
		Engine: engine,
		Retriever: &retriever.Retriever{
			Engine: engine,
			Embed:  client,
			Model:  "fake-model",
		},
	}
}

func TestSearchDefaultsSemanticToTrueWhenUnset(t *testing.T) {
	client := &trackingEmbedClient{dim: 4}
	f := newTestFacade(t, client)
	client.called = false // reset after the bootstrap dimension probe

	_, err := f.Search(context.Background(), SearchParams{Query: "hello", Limit: 5})

	require.NoError(t, err)
	assert.True(t, client.called, "Search should embed the query when Semantic is left unset")
}

func TestSearchSkipsEmbeddingWhenSemanticIsFalse(t *testing.T) {
	client := &trackingEmbedClient{dim: 4}
	f := newTestFacade(t, client)
	client.called = false // reset after the bootstrap dimension probe

	semantic := false
	_, err := f.Search(context.Background(), SearchParams{Query: "hello", Limit: 5, Semantic: &semantic})

	require.NoError(t, err)
	assert.False(t, client.called, "Search should not embed the query when Semantic is false")
}
