package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/finrag/finrag/internal/pipeline"
)

type handlers struct {
	querier Querier
	logger  *slog.Logger
}

// queryRequest is the JSON body of POST /query. Rerank and cache default to
// enabled when omitted.
type queryRequest struct {
	Question  string `json:"question"`
	TopK      int    `json:"top_k"`
	UseRerank *bool  `json:"use_rerank"`
	UseCache  *bool  `json:"use_cache"`
}

func (h *handlers) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.querier.Query(r.Context(), pipeline.QueryRequest{
		Question:  req.Question,
		TopK:      req.TopK,
		UseCache:  req.UseCache == nil || *req.UseCache,
		UseRerank: req.UseRerank == nil || *req.UseRerank,
	})
	if err != nil {
		h.logger.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.querier.Metrics(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
