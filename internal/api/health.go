package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
)

// healthHandler serves liveness and readiness probes.
type healthHandler struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// liveness returns 200 if the process is alive.
func (h *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness returns 200 once the database answers a ping.
func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		http.Error(w, "database pool not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.pool.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// InfoResponse is the service banner.
type InfoResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version,omitempty"`
	Model     string   `json:"model"`
	Documents int64    `json:"documents"`
	Languages []string `json:"languages"`
}

// infoHandler reports what this instance is running.
type infoHandler struct {
	store   documentStore
	model   string
	version string
}

func (h *infoHandler) info(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		count = -1 // banner stays useful even when the count query fails
	}

	langs := make([]string, 0, 3)
	for _, l := range language.All() {
		langs = append(langs, l.String())
	}

	writeJSON(w, http.StatusOK, InfoResponse{
		Service:   "sahayi",
		Version:   h.version,
		Model:     h.model,
		Documents: count,
		Languages: langs,
	})
}
