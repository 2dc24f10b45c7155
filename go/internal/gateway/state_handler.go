package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/ktbartholomew/karate-scoreboard/go/internal/scoreboard"
	"github.com/rs/zerolog/log"
)

// SnapshotProvider exposes the latest match snapshot.
type SnapshotProvider interface {
	Snapshot() scoreboard.Snapshot
}

// StateHandler serves the match state over plain HTTP.
type StateHandler struct {
	provider SnapshotProvider
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider SnapshotProvider) *StateHandler {
	return &StateHandler{provider: provider}
}

// HandleGetMatchState handles GET /api/match/state
func (h *StateHandler) HandleGetMatchState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.provider.Snapshot()); err != nil {
		log.Error().Err(err).Msg("failed to encode match state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/match/state", h.HandleGetMatchState)
}
