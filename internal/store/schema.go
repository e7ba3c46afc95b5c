package store

import "fmt"

// schemaSQL returns the relational DDL. The vec0 virtual table is created
// separately once the embedding dimension is known (§4.1) — vec0 bakes
// its column width into the CREATE VIRTUAL TABLE statement and cannot be
// ALTERed, so it is deferred until Open() has read or written
// embed_dimension.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS item (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source_uri  TEXT NOT NULL UNIQUE,
    title       TEXT,
    source_type TEXT,
    context     TEXT,
    expires_at  DATETIME,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chunk (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id     INTEGER NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    chunk_key   TEXT,
    chunk_index INTEGER NOT NULL,
    text        TEXT NOT NULL,
    meta        TEXT
);

CREATE TABLE IF NOT EXISTS tag (
    item_id INTEGER NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    tag     TEXT NOT NULL,
    PRIMARY KEY (item_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_chunk_item ON chunk(item_id);
CREATE INDEX IF NOT EXISTS idx_chunk_item_key ON chunk(item_id, chunk_key);
CREATE INDEX IF NOT EXISTS idx_tag_tag ON tag(tag);
CREATE INDEX IF NOT EXISTS idx_item_source_type ON item(source_type);
CREATE INDEX IF NOT EXISTS idx_item_expires_at ON item(expires_at);

-- Contentless-adjacent FTS index over chunk text. The triggers read the
-- owning item's context at fire time (§4.1) — an item's context edited
-- after a chunk was indexed does not retroactively update that chunk's
-- FTS row. This staleness is a documented property of the system, not a
-- bug to fix.
CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    text,
    context,
    content='chunk',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS chunk_ai AFTER INSERT ON chunk BEGIN
    INSERT INTO chunks_fts(rowid, text, context)
    VALUES (new.id, new.text, (SELECT context FROM item WHERE id = new.item_id));
END;

CREATE TRIGGER IF NOT EXISTS chunk_ad AFTER DELETE ON chunk BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, text, context)
    VALUES ('delete', old.id, old.text, (SELECT context FROM item WHERE id = old.item_id));
END;

CREATE TRIGGER IF NOT EXISTS chunk_au AFTER UPDATE ON chunk BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, text, context)
    VALUES ('delete', old.id, old.text, (SELECT context FROM item WHERE id = old.item_id));
    INSERT INTO chunks_fts(rowid, text, context)
    VALUES (new.id, new.text, (SELECT context FROM item WHERE id = new.item_id));
END;
`

// vecSchemaSQL returns the vec0 virtual table DDL for the given embedding
// dimension (§4.1, I3: vector length must equal embed_dimension).
func vecSchemaSQL(dimension int) string {
	return fmt.Sprintf(`
CREATE VIRTUAL TABLE IF NOT EXISTS chunk_embeddings USING vec0(
    chunk_id  INTEGER PRIMARY KEY,
    embedding float[%d]
);
`, dimension)
}
