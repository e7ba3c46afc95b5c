package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GonzoDMX/uridx/internal/store"
	"github.com/GonzoDMX/uridx/internal/uerr"
)

// fakeEmbedClient returns a fixed-dimension deterministic vector per
// text so tests don't depend on a real embedding provider.
type fakeEmbedClient struct {
	dim int
}

func (f *fakeEmbedClient) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, txt := range texts {
		vec := make([]float32, f.dim)
		for j := range vec {
			vec[j] = float32(len(txt)+j) * 0.01
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedClient) Dimension(ctx context.Context, model string) (int, error) {
	return f.dim, nil
}

// flakyEmbedClient fails every call to Embed before call number
// failUntilAttempt, then delegates to fakeEmbedClient, so tests can exercise embedWithRetry's
// backoff-and-succeed path.
type flakyEmbedClient struct {
	fakeEmbedClient
	failUntilAttempt int
	attempts         int
}

func (f *flakyEmbedClient) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	f.attempts++
	if f.attempts < f.failUntilAttempt {
		return nil, errors.New("transient provider hiccup")
	}
	return f.fakeEmbedClient.Embed(ctx, model, texts)
}

// alwaysFailingEmbedClient fails every call, so tests can exercise
// embedWithRetry's give-up-after-MaxRetries path.
type alwaysFailingEmbedClient struct {
	attempts int
}

func (f *alwaysFailingEmbedClient) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	f.attempts++
	return nil, errors.New("provider permanently unreachable")
}

func (f *alwaysFailingEmbedClient) Dimension(ctx context.Context, model string) (int, error) {
	return 8, nil
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	client := &fakeEmbedClient{dim: 8}
	dbPath := filepath.Join(t.TempDir(), "uridx.db")

	engine, err := store.Open(context.Background(), dbPath, "fake-model", client)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return &Pipeline{Engine: engine, Embed: client, Model: "fake-model"}
}

func key(s string) *string { return &s }

func TestUpsertInsertThenMergePreservesUnchangedChunkKeys(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t)

	itemID, err := p.Upsert(ctx, Record{
		SourceURI: "file://doc",
		Chunks: []ChunkInput{
			{Text: "first", Key: key("a")},
			{Text: "second", Key: key("b")},
		},
	})
	require.NoError(t, err)

	before, err := store.ListChunksByItem(ctx, p.Engine.DB(), itemID)
	require.NoError(t, err)
	require.Len(t, before, 2)
	firstChunkID := before[0].ID

	// Re-ingest with "a" unchanged, "b" dropped, "c" new.
	_, err = p.Upsert(ctx, Record{
		SourceURI: "file://doc",
		Chunks: []ChunkInput{
			{Text: "first", Key: key("a")},
			{Text: "third", Key: key("c")},
		},
	})
	require.NoError(t, err)

	after, err := store.ListChunksByItem(ctx, p.Engine.DB(), itemID)
	require.NoError(t, err)
	require.Len(t, after, 2)

	var keys []string
	var sawPreservedID bool
	for _, c := range after {
		require.NotNil(t, c.ChunkKey)
		keys = append(keys, *c.ChunkKey)
		if *c.ChunkKey == "a" {
			sawPreservedID = c.ID == firstChunkID
		}
	}
	assert.ElementsMatch(t, []string{"a", "c"}, keys)
	assert.True(t, sawPreservedID, "chunk key \"a\" should keep its chunk id across merge")
}

func TestUpsertReplaceWipesIdentity(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t)

	firstID, err := p.Upsert(ctx, Record{
		SourceURI: "file://doc",
		Chunks:    []ChunkInput{{Text: "v1", Key: key("a")}},
	})
	require.NoError(t, err)

	secondID, err := p.Upsert(ctx, Record{
		SourceURI: "file://doc",
		Chunks:    []ChunkInput{{Text: "v2", Key: key("a")}},
		Replace:   true,
	})
	require.NoError(t, err)

	assert.NotEqual(t, firstID, secondID, "replace deletes and reinserts the item, so the item id changes")

	chunks, err := store.ListChunksByItem(ctx, p.Engine.DB(), secondID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "v2", chunks[0].Text)
}

func TestDeleteCascadesChunksAndEmbeddings(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t)

	itemID, err := p.Upsert(ctx, Record{
		SourceURI: "file://doc",
		Chunks:    []ChunkInput{{Text: "only chunk"}},
	})
	require.NoError(t, err)

	chunks, err := store.ListChunksByItem(ctx, p.Engine.DB(), itemID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	require.NoError(t, p.Delete(ctx, "file://doc"))

	_, err = store.GetItemBySourceURI(ctx, p.Engine.DB(), "file://doc")
	assert.ErrorIs(t, err, store.ErrNotFound)

	remaining, err := store.ListChunksByItem(ctx, p.Engine.DB(), itemID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	orphans, err := store.OrphanedEmbeddingIDs(ctx, p.Engine.DB())
	require.NoError(t, err)
	assert.Empty(t, orphans, "the deleted chunk's embedding row should be gone too")
}

func TestDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t)

	err := p.Delete(ctx, "file://missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEmbedWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	ctx := context.Background()
	client := &flakyEmbedClient{fakeEmbedClient: fakeEmbedClient{dim: 8}, failUntilAttempt: 3}
	p := &Pipeline{Embed: client, Model: "fake-model"}

	vectors, err := p.embedWithRetry(ctx, []string{"hello"})

	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, 3, client.attempts, "should succeed on the third attempt, matching uerr.MaxRetries")
}

func TestEmbedWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	client := &alwaysFailingEmbedClient{}
	p := &Pipeline{Embed: client, Model: "fake-model"}

	_, err := p.embedWithRetry(ctx, []string{"hello"})

	require.Error(t, err)
	var transientErr *uerr.TransientError
	require.ErrorAs(t, err, &transientErr)
	assert.Equal(t, uerr.MaxRetries, transientErr.Attempt)
	assert.Equal(t, uerr.MaxRetries, client.attempts, "should try exactly MaxRetries times, no more")
}

func TestRepairRecomputesMissingEmbeddingsWithoutError(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t)

	itemID, err := p.Upsert(ctx, Record{
		SourceURI: "file://doc",
		Chunks:    []ChunkInput{{Text: "hello"}},
	})
	require.NoError(t, err)

	chunks, err := store.ListChunksByItem(ctx, p.Engine.DB(), itemID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.NoError(t, store.DeleteEmbeddingsByID(ctx, p.Engine.DB(), []int64{chunks[0].ID}))

	assert.NoError(t, p.Repair(ctx))

	missing, err := store.CountEmbeddinglessChunks(ctx, p.Engine.DB())
	require.NoError(t, err)
	assert.Empty(t, missing, "Repair should have re-embedded the chunk")
}
