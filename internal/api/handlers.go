package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/GonzoDMX/uridx/internal/facade"
)

// Server wires the tool façade (§4.5) to an HTTP surface for `uridx
// serve` (§6.3). Each handler does nothing but decode, call the
// façade, and re-encode — all validation and business logic lives in
// internal/facade.
type Server struct {
	Facade *facade.Facade
}

// RequestID returns a fresh request id (surfaced in StandardResponse.Meta),
// the same per-request identifier pattern google/uuid backs elsewhere in
// the retrieval pack.
func RequestID() string {
	return uuid.NewString()
}

func meta(requestID string) interface{} {
	return map[string]string{"request_id": requestID}
}

// HandleSearch — POST /api/v1/search
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID()

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	rows, err := s.Facade.Search(r.Context(), facade.SearchParams{
		Query:      req.Query,
		Limit:      req.Limit,
		SourceType: req.SourceType,
		Tags:       req.Tags,
		Semantic:   req.Semantic,
	})
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make([]SearchResultRow, len(rows))
	for i, row := range rows {
		out[i] = SearchResultRow{
			SourceURI:  row.SourceURI,
			Title:      row.Title,
			SourceType: row.SourceType,
			ChunkKey:   row.ChunkKey,
			ChunkIndex: row.ChunkIndex,
			Text:       row.Text,
			Score:      row.Score,
		}
	}

	jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: out, Meta: meta(reqID)})
}

// HandleAdd — POST /api/v1/items
func (s *Server) HandleAdd(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID()

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result, err := s.Facade.Add(r.Context(), facade.AddParams{
		SourceURI:  req.SourceURI,
		Title:      req.Title,
		Text:       req.Text,
		SourceType: req.SourceType,
		Tags:       req.Tags,
		Context:    req.Context,
	})
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, StandardResponse{
		Success: true,
		Data:    AddResponse{Status: result.Status, SourceURI: result.SourceURI, Title: result.Title},
		Meta:    meta(reqID),
	})
}

// HandleDelete — DELETE /api/v1/items?source_uri=...
func (s *Server) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID()

	uri := r.URL.Query().Get("source_uri")
	if uri == "" {
		errorResponse(w, http.StatusBadRequest, "source_uri query parameter is required")
		return
	}

	result, err := s.Facade.Delete(r.Context(), uri)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, StandardResponse{
		Success: true,
		Data:    DeleteResponse{Status: result.Status, SourceURI: result.SourceURI},
		Meta:    meta(reqID),
	})
}

// HandleGet — GET /api/v1/items?source_uri=...
func (s *Server) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID()

	uri := r.URL.Query().Get("source_uri")
	if uri == "" {
		errorResponse(w, http.StatusBadRequest, "source_uri query parameter is required")
		return
	}

	item, err := s.Facade.Get(r.Context(), uri)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		jsonResponse(w, http.StatusOK, StandardResponse{Success: true, Data: nil, Meta: meta(reqID)})
		return
	}

	chunks := make([]ChunkResponse, len(item.Chunks))
	for i, c := range item.Chunks {
		chunks[i] = ChunkResponse{ChunkKey: c.ChunkKey, ChunkIndex: c.ChunkIndex, Text: c.Text, Meta: c.Meta}
	}

	jsonResponse(w, http.StatusOK, StandardResponse{
		Success: true,
		Data: ItemResponse{
			SourceURI:  item.SourceURI,
			Title:      item.Title,
			SourceType: item.SourceType,
			Context:    item.Context,
			Tags:       item.Tags,
			Chunks:     chunks,
		},
		Meta: meta(reqID),
	})
}

// HandleStats — GET /api/v1/stats
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID()

	stats, err := s.Facade.Stats(r.Context())
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, StandardResponse{
		Success: true,
		Data: StatsResponse{
			ItemCount:      stats.ItemCount,
			ChunkCount:     stats.ChunkCount,
			BySourceType:   stats.BySourceType,
			EmbedModel:     s.Facade.Engine.EmbedModel,
			EmbedDimension: s.Facade.Engine.Dimension,
		},
		Meta: meta(reqID),
	})
}

// HandleHealth — GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "alive"})
}
