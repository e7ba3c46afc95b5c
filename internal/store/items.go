package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GonzoDMX/uridx/internal/models"
)

// ErrNotFound is returned by lookups with no matching row (§7 NotFound —
// a normal value, not an exceptional error).
var ErrNotFound = errors.New("not found")

// GetItemBySourceURI returns the item row for source_uri, without its
// chunks or tags, or ErrNotFound (I1: source_uri is unique).
func GetItemBySourceURI(ctx context.Context, q Querier, sourceURI string) (*models.Item, error) {
	item := &models.Item{}
	err := q.QueryRowContext(ctx, `
		SELECT id, source_uri, title, source_type, context, expires_at, created_at, updated_at
		FROM item WHERE source_uri = ?`, sourceURI,
	).Scan(&item.ID, &item.SourceURI, &item.Title, &item.SourceType, &item.Context, &item.ExpiresAt, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItemByID loads an item by primary key, or ErrNotFound.
func GetItemByID(ctx context.Context, q Querier, id int64) (*models.Item, error) {
	item := &models.Item{}
	err := q.QueryRowContext(ctx, `
		SELECT id, source_uri, title, source_type, context, expires_at, created_at, updated_at
		FROM item WHERE id = ?`, id,
	).Scan(&item.ID, &item.SourceURI, &item.Title, &item.SourceType, &item.Context, &item.ExpiresAt, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Querier is satisfied by both *sql.DB and *sql.Tx, letting read helpers
// run inside or outside a write transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertItem creates a new item row and returns its id.
func InsertItem(ctx context.Context, tx *sql.Tx, item *models.Item) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO item (source_uri, title, source_type, context, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		item.SourceURI, item.Title, item.SourceType, item.Context, item.ExpiresAt)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return res.LastInsertId()
}

// UpdateItem overwrites an existing item's metadata fields and bumps
// updated_at (used by the merge ingestion path).
func UpdateItem(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE item SET title = ?, source_type = ?, context = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		item.Title, item.SourceType, item.Context, item.ExpiresAt, item.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// DeleteItem removes an item; ON DELETE CASCADE removes its chunks and
// tags. vec0 has no foreign keys, so the caller deletes the item's
// embedding rows before this runs (I5 — see DeleteChunksForItem).
func DeleteItem(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM item WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ReplaceTags removes all existing tags for item and inserts the given set.
func ReplaceTags(ctx context.Context, tx *sql.Tx, itemID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tag WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tag (item_id, tag) VALUES (?, ?)`, itemID, t); err != nil {
			return fmt.Errorf("insert tag %q: %w", t, err)
		}
	}
	return nil
}

// LoadTags returns all tags for item.
func LoadTags(ctx context.Context, q Querier, itemID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT tag FROM tag WHERE item_id = ? ORDER BY tag`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Stats is the aggregate view returned by the stats operation (§4.1).
type Stats struct {
	ItemCount     int
	ChunkCount    int
	BySourceType  map[string]int
	EmbedModel    string
	EmbedDimension int
}

// GetStats computes item/chunk counts grouped by source_type, grouping
// NULL source_type under models.SourceTypeUnknown.
func GetStats(ctx context.Context, q Querier) (Stats, error) {
	var s Stats
	s.BySourceType = make(map[string]int)

	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM item`).Scan(&s.ItemCount); err != nil {
		return s, err
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunk`).Scan(&s.ChunkCount); err != nil {
		return s, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT COALESCE(source_type, ?), COUNT(*) FROM item GROUP BY source_type`,
		models.SourceTypeUnknown)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return s, err
		}
		s.BySourceType[st] = n
	}
	return s, rows.Err()
}
