package models

import "time"

// Item is a logical source document (§3).
type Item struct {
	ID         int64
	SourceURI  string
	Title      *string
	SourceType *string
	Context    *string
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Chunks []Chunk
	Tags   []string
}

// Chunk is a retrievable fragment of an Item (§3).
type Chunk struct {
	ID         int64
	ItemID     int64
	ChunkKey   *string
	ChunkIndex int
	Text       string
	Meta       *string // opaque JSON blob, stored verbatim
}

// Tag is a label on an Item (§3).
type Tag struct {
	ItemID int64
	Tag    string
}

// Setting is a persisted key/value pair (§3). Required keys: embed_model,
// embed_dimension.
type Setting struct {
	Key   string
	Value string
}

const (
	SettingEmbedModel     = "embed_model"
	SettingEmbedDimension = "embed_dimension"
)

// SourceTypeUnknown is the grouping label stats() uses for items whose
// source_type is NULL (§4.1 stats()).
const SourceTypeUnknown = "unknown"
