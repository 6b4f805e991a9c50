// Package httpapi provides the JSON HTTP surface over the retrieval
// engine. It is a thin caller of the core's public operations; all
// retrieval semantics live behind the driving ports.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	engine      driving.RetrievalEngine
	transcripts driven.TranscriptStore
	version     string
}

// NewHandler creates a new Handler. The transcript store is optional;
// without it /stats omits exchange counts.
func NewHandler(engine driving.RetrievalEngine, transcripts driven.TranscriptStore, version string) *Handler {
	return &Handler{
		engine:      engine,
		transcripts: transcripts,
		version:     version,
	}
}

// queryRequest is the body of POST /query.
type queryRequest struct {
	Query     string    `json:"query"`
	Embedding []float32 `json:"embedding,omitempty"`
	TopK      int       `json:"top_k,omitempty"`
}

// queryResponse is the body of a successful POST /query.
type queryResponse struct {
	Chunks   []chunkResponse `json:"chunks"`
	Count    int             `json:"count"`
	Degraded bool            `json:"degraded"`
}

type chunkResponse struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// chunksRequest is the body of POST /chunks.
type chunksRequest struct {
	Chunks []chunkInput `json:"chunks"`
}

type chunkInput struct {
	ID        string         `json:"id,omitempty"`
	Text      string         `json:"text"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// chunksResponse reports which chunks were written. Written < Requested
// signals a partial write.
type chunksResponse struct {
	IDs       []string `json:"ids"`
	Requested int      `json:"requested"`
	Written   int      `json:"written"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`

	// Partial is true when a sustained write conflict stopped the
	// operation before every matching chunk was removed.
	Partial bool `json:"partial,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleQuery handles POST /query requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Query == "" && len(req.Embedding) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "query or embedding required"})
		return
	}

	result := h.engine.Query(r.Context(), domain.Query{
		Text:      req.Query,
		Embedding: req.Embedding,
		TopK:      req.TopK,
	})

	resp := queryResponse{
		Chunks:   make([]chunkResponse, len(result.Chunks)),
		Count:    len(result.Chunks),
		Degraded: result.Degraded,
	}
	for i, sc := range result.Chunks {
		resp.Chunks[i] = chunkResponse{
			ID:       sc.Chunk.ID,
			Text:     sc.Chunk.Text,
			Score:    sc.Score,
			Metadata: sc.Chunk.Metadata,
		}
	}
	sendJSON(w, http.StatusOK, resp)
}

// HandleAddChunks handles POST /chunks requests.
func (h *Handler) HandleAddChunks(w http.ResponseWriter, r *http.Request) {
	var req chunksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if len(req.Chunks) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "no chunks supplied"})
		return
	}

	chunks := make([]domain.Chunk, len(req.Chunks))
	for i, in := range req.Chunks {
		chunks[i] = domain.Chunk{
			ID:        in.ID,
			Text:      in.Text,
			Embedding: in.Embedding,
			Metadata:  in.Metadata,
		}
	}

	ids, err := h.engine.Add(r.Context(), chunks)
	if err != nil {
		sendJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	sendJSON(w, http.StatusOK, chunksResponse{
		IDs:       ids,
		Requested: len(req.Chunks),
		Written:   len(ids),
	})
}

// HandleDeleteSource handles DELETE /sources/{source} requests.
func (h *Handler) HandleDeleteSource(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]
	if source == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "source required"})
		return
	}

	deleted, err := h.engine.DeleteBySource(r.Context(), source)
	if err != nil {
		if errors.Is(err, domain.ErrWriteConflict) {
			sendJSON(w, http.StatusOK, deleteResponse{Deleted: deleted, Partial: true})
			return
		}
		sendJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// HandleClear handles POST /clear requests.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.engine.ClearAll(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrWriteConflict) {
			sendJSON(w, http.StatusOK, deleteResponse{Deleted: deleted, Partial: true})
			return
		}
		sendJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// HandleHealth handles GET /healthz requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	state := h.engine.State()
	if err := h.engine.Ping(r.Context()); err != nil {
		sendJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":      "unavailable",
			"index_state": state.String(),
			"error":       err.Error(),
		})
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"index_state": state.String(),
	})
}

// HandleStats handles GET /stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"version":     h.version,
		"index_state": h.engine.State().String(),
	}
	if h.transcripts != nil {
		if count, err := h.transcripts.Count(r.Context()); err == nil {
			stats["exchanges"] = count
		}
	}
	sendJSON(w, http.StatusOK, stats)
}

// sendJSON writes a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
