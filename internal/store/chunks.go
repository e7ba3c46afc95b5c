package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/GonzoDMX/uridx/internal/models"
)

// ListChunksByItem returns every chunk belonging to item, ordered by
// chunk_index, as needed by the merge path to diff incoming chunk_keys
// against what is already stored (§4.3).
func ListChunksByItem(ctx context.Context, q Querier, itemID int64) ([]models.Chunk, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, item_id, chunk_key, chunk_index, text, meta
		FROM chunk WHERE item_id = ? ORDER BY chunk_index`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ChunkKey, &c.ChunkIndex, &c.Text, &c.Meta); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertChunk creates a new chunk row and returns its id. The chunk_ai
// trigger fires synchronously to populate chunks_fts (§4.1).
func InsertChunk(ctx context.Context, tx *sql.Tx, c models.Chunk) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO chunk (item_id, chunk_key, chunk_index, text, meta)
		VALUES (?, ?, ?, ?, ?)`,
		c.ItemID, c.ChunkKey, c.ChunkIndex, c.Text, c.Meta)
	if err != nil {
		return 0, fmt.Errorf("insert chunk: %w", err)
	}
	return res.LastInsertId()
}

// UpdateChunkText rewrites a chunk's text/meta/index in place, preserving
// its id (and thus its embedding row, which the caller recomputes
// separately) — used by the merge path for chunk_keys that survive.
func UpdateChunkText(ctx context.Context, tx *sql.Tx, chunkID int64, chunkIndex int, text string, meta *string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE chunk SET chunk_index = ?, text = ?, meta = ? WHERE id = ?`,
		chunkIndex, text, meta, chunkID)
	if err != nil {
		return fmt.Errorf("update chunk: %w", err)
	}
	return nil
}

// DeleteChunk removes a single chunk row together with its
// chunk_embeddings row, which it deletes explicitly first (vec0 has no
// foreign keys — I2); the chunk_ad trigger removes its chunks_fts row.
func DeleteChunk(ctx context.Context, tx *sql.Tx, chunkID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunk_embeddings WHERE chunk_id = ?`, chunkID); err != nil {
		return fmt.Errorf("delete embedding for chunk %d: %w", chunkID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunk WHERE id = ?`, chunkID); err != nil {
		return fmt.Errorf("delete chunk %d: %w", chunkID, err)
	}
	return nil
}

// DeleteChunksForItem removes the chunk_embeddings rows of every chunk
// belonging to item; the chunk rows themselves are left for the item
// delete's ON DELETE CASCADE. It runs before that delete so embedding
// rows don't outlive their chunk (vec0 ignores ON DELETE CASCADE).
func DeleteChunksForItem(ctx context.Context, q Querier, itemID int64) error {
	if _, err := q.ExecContext(ctx, `
		DELETE FROM chunk_embeddings WHERE chunk_id IN (SELECT id FROM chunk WHERE item_id = ?)`, itemID); err != nil {
		return fmt.Errorf("delete embeddings for item %d: %w", itemID, err)
	}
	return nil
}

// UpsertEmbedding writes (or overwrites) the vec0 row for chunkID. vector
// must already be formatted as sqlite-vec's bracketed literal via
// FormatVector. vec0's xUpdate callback (sqlite-vec v0.1.6) only ever
// supports INSERT and DELETE, not an UPDATE routed through ON CONFLICT
// DO UPDATE, so a pre-existing row is replaced via INSERT OR REPLACE
// rather than upserted in place.
func UpsertEmbedding(ctx context.Context, q Querier, chunkID int64, vectorLiteral string) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO chunk_embeddings (chunk_id, embedding) VALUES (?, ?)`,
		chunkID, vectorLiteral)
	if err != nil {
		return fmt.Errorf("upsert embedding for chunk %d: %w", chunkID, err)
	}
	return nil
}

// CountEmbeddinglessChunks returns chunk ids that have no matching
// chunk_embeddings row — the I2 violation the repair scan looks for.
func CountEmbeddinglessChunks(ctx context.Context, q Querier) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id FROM chunk c
		LEFT JOIN chunk_embeddings e ON e.chunk_id = c.id
		WHERE e.chunk_id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OrphanedEmbeddingIDs returns chunk_embeddings rows with no matching
// chunk row, the other half of I2.
func OrphanedEmbeddingIDs(ctx context.Context, q Querier) ([]int64, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.chunk_id FROM chunk_embeddings e
		LEFT JOIN chunk c ON c.id = e.chunk_id
		WHERE c.id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteEmbeddingsByID removes chunk_embeddings rows for the given chunk
// ids (used by the repair scan to drop orphaned vectors — I2).
func DeleteEmbeddingsByID(ctx context.Context, q Querier, chunkIDs []int64) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(chunkIDs))
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := "DELETE FROM chunk_embeddings WHERE chunk_id IN (" + strings.Join(placeholders, ",") + ")"
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// GetChunkByID loads a single chunk by id.
func GetChunkByID(ctx context.Context, q Querier, id int64) (models.Chunk, error) {
	var c models.Chunk
	err := q.QueryRowContext(ctx, `
		SELECT id, item_id, chunk_key, chunk_index, text, meta FROM chunk WHERE id = ?`, id,
	).Scan(&c.ID, &c.ItemID, &c.ChunkKey, &c.ChunkIndex, &c.Text, &c.Meta)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}
