package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/log"
	"github.com/malayalamlabs/sahayi/internal/rag"
)

// maxQueryLength bounds accepted question length.
const maxQueryLength = 2000

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Query    string `json:"query"`
	Language string `json:"language,omitempty"` // "en", "ml" or "manglish"; empty = detect
}

// QueryResponse is the answer payload.
type QueryResponse struct {
	Answer   string              `json:"answer"`
	Language string              `json:"language"`
	Contexts []knowledge.Context `json:"contexts"`
}

// queryHandler serves the answering endpoints.
type queryHandler struct {
	pipeline *rag.Pipeline
	logger   log.Logger
}

// query answers a question synchronously.
func (h *queryHandler) query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be JSON with a query field")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}
	if len(req.Query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("query exceeds %d bytes", maxQueryLength))
		return
	}

	ans := h.pipeline.Answer(r.Context(), req.Query, req.Language)

	contexts := ans.Contexts
	if contexts == nil {
		contexts = []knowledge.Context{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:   ans.Text,
		Language: ans.Language.String(),
		Contexts: contexts,
	})
}

// stream answers a question over Server-Sent Events. Query parameters:
// q (required) and language (optional).
//
// Events:
//
//	event: chunk  data: {"text": "..."}     answer text, incrementally
//	event: done   data: {"language": "..."} end of stream
func (h *queryHandler) stream(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "q parameter must not be empty")
		return
	}
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("q exceeds %d bytes", maxQueryLength))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer cannot stream")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	seq, lang, contexts := h.pipeline.StreamAnswer(r.Context(), query, r.URL.Query().Get("language"))

	for chunk := range seq {
		if err := writeSSE(w, "chunk", map[string]string{"text": chunk}); err != nil {
			h.logger.Debug("client gone mid-stream", "error", err)
			return
		}
		flusher.Flush()
	}

	done := map[string]any{"language": lang.String(), "contexts": len(contexts)}
	if err := writeSSE(w, "done", done); err != nil {
		return
	}
	flusher.Flush()
}

// writeSSE writes one SSE event with a JSON data payload.
func writeSSE(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}
