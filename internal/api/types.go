package api

// StandardResponse wraps every /api/v1 response this server sends so
// clients can always check "success" first and fall back to "error" on
// failure. GET /health answers with a bare {"status": "alive"} object.
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"` // request id
}

// SearchRequest is the JSON body for POST /api/v1/search (§4.5, §6.2).
type SearchRequest struct {
	Query      string   `json:"query"`
	Limit      int      `json:"limit"`
	SourceType string   `json:"source_type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	// Semantic defaults to true (hybrid search) when omitted.
	Semantic *bool `json:"semantic,omitempty"`
}

// SearchResultRow is one row of a search response.
type SearchResultRow struct {
	SourceURI  string  `json:"source_uri"`
	Title      *string `json:"title,omitempty"`
	SourceType *string `json:"source_type,omitempty"`
	ChunkKey   *string `json:"chunk_key,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// AddRequest is the JSON body for POST /api/v1/items (§4.5).
type AddRequest struct {
	SourceURI  string   `json:"source_uri"`
	Title      string   `json:"title,omitempty"`
	Text       string   `json:"text"`
	SourceType string   `json:"source_type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Context    string   `json:"context,omitempty"`
}

// AddResponse mirrors §4.5's {status:"added", source_uri, title}.
type AddResponse struct {
	Status    string `json:"status"`
	SourceURI string `json:"source_uri"`
	Title     string `json:"title,omitempty"`
}

// DeleteResponse mirrors §4.5's {status, source_uri}.
type DeleteResponse struct {
	Status    string `json:"status"`
	SourceURI string `json:"source_uri"`
}

// ItemResponse is the full item view returned by GET /api/v1/items?source_uri=....
type ItemResponse struct {
	SourceURI  string          `json:"source_uri"`
	Title      *string         `json:"title,omitempty"`
	SourceType *string         `json:"source_type,omitempty"`
	Context    *string         `json:"context,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Chunks     []ChunkResponse `json:"chunks"`
}

// ChunkResponse is one chunk within an ItemResponse.
type ChunkResponse struct {
	ChunkKey   *string `json:"chunk_key,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Meta       *string `json:"meta,omitempty"`
}

// StatsResponse mirrors store.Stats (§4.1 stats()).
type StatsResponse struct {
	ItemCount      int            `json:"item_count"`
	ChunkCount     int            `json:"chunk_count"`
	BySourceType   map[string]int `json:"by_source_type"`
	EmbedModel     string         `json:"embed_model"`
	EmbedDimension int            `json:"embed_dimension"`
}
