package web

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviahub/go/internal/trivia"
)

// Handler serves the read-only HTTP views over the session store: the
// sessions list, per-session info, an existence check, and the
// create-session redirect. Sessions come into being on first join, so
// create only hands out a fresh id.
type Handler struct {
	engine *trivia.Engine
}

// NewHandler creates the HTTP handler over an engine.
func NewHandler(engine *trivia.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes registers the session API routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.handleList)
	mux.HandleFunc("POST /api/sessions", h.handleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleInfo)
	mux.HandleFunc("GET /api/sessions/{id}/exists", h.handleExists)
	log.Info().Msg("session API routes registered")
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Sessions())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()[:8]
	http.Redirect(w, r, "/session/"+id, http.StatusSeeOther)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	state, ok := h.engine.SessionState(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleExists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"exists": h.engine.SessionExists(r.PathValue("id")),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
