package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/GonzoDMX/uridx/internal/store"
)

// Repair scans for I2 violations (chunks without an embedding, or
// embedding rows without a chunk) left behind by an aborted ingestion —
// the TransientError path in embedChunks, or a process killed between
// the relational commit and the embedding phase. It is run once at
// startup (§7 Internal: "repair-scan logged fix", not a raised error).
func (p *Pipeline) Repair(ctx context.Context) error {
	missing, err := store.CountEmbeddinglessChunks(ctx, p.Engine.DB())
	if err != nil {
		return fmt.Errorf("scan for embeddingless chunks: %w", err)
	}

	for _, chunkID := range missing {
		chunk, err := store.GetChunkByID(ctx, p.Engine.DB(), chunkID)
		if err != nil {
			return fmt.Errorf("load chunk %d for repair: %w", chunkID, err)
		}
		if err := p.embedChunks(ctx, []chunkToEmbed{{id: chunk.ID, text: chunk.Text}}); err != nil {
			return fmt.Errorf("repair embedding for chunk %d: %w", chunkID, err)
		}
		log.Printf("repair: recomputed missing embedding for chunk %d", chunkID)
	}

	orphans, err := store.OrphanedEmbeddingIDs(ctx, p.Engine.DB())
	if err != nil {
		return fmt.Errorf("scan for orphaned embeddings: %w", err)
	}

	if len(orphans) > 0 {
		log.Printf("repair: removing %d orphaned embedding rows", len(orphans))
		if err := store.DeleteEmbeddingsByID(ctx, p.Engine.DB(), orphans); err != nil {
			return fmt.Errorf("delete orphaned embeddings: %w", err)
		}
	}

	return nil
}
