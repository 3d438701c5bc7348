package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// CreateDocumentRequest is the body of POST /api/v1/documents.
type CreateDocumentRequest struct {
	English   string `json:"english"`
	Malayalam string `json:"malayalam"`
	Manglish  string `json:"manglish,omitempty"`
}

// CreateDocumentResponse returns the stored document's ID.
type CreateDocumentResponse struct {
	ID       string `json:"id"`
	Manglish string `json:"manglish,omitempty"` // filled in when transliterated
}

// ListDocumentsResponse is the corpus listing payload.
type ListDocumentsResponse struct {
	Documents []knowledge.Document `json:"documents"`
	Total     int64                `json:"total"`
}

// documentHandler serves corpus management endpoints.
type documentHandler struct {
	store  documentStore
	logger log.Logger
}

// create adds a document. When the Manglish rendition is missing but a
// Malayalam one exists, a transliterated rendition is generated so all
// three language slots stay searchable.
func (h *documentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be JSON")
		return
	}

	req.English = strings.TrimSpace(req.English)
	req.Malayalam = strings.TrimSpace(req.Malayalam)
	req.Manglish = strings.TrimSpace(req.Manglish)

	if req.English == "" && req.Malayalam == "" && req.Manglish == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "document needs text in at least one language")
		return
	}

	transliterated := ""
	if req.Manglish == "" && req.Malayalam != "" {
		req.Manglish = language.Transliterate(req.Malayalam)
		transliterated = req.Manglish
	}

	id, err := h.store.Insert(r.Context(), req.English, req.Malayalam, req.Manglish)
	if err != nil {
		h.logger.Error("document insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "insert_failed", "could not store document")
		return
	}

	writeJSON(w, http.StatusCreated, CreateDocumentResponse{ID: id, Manglish: transliterated})
}

// list returns documents with limit/offset paging.
func (h *documentHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	docs, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	total, err := h.store.Count(r.Context())
	if err != nil {
		h.logger.Error("document count failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "could not count documents")
		return
	}

	if docs == nil {
		docs = []knowledge.Document{}
	}
	writeJSON(w, http.StatusOK, ListDocumentsResponse{Documents: docs, Total: total})
}

// queryInt parses an int32 query parameter with a default.
func queryInt(r *http.Request, name string, def int32) int32 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}
