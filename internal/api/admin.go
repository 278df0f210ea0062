package api

import (
	"net/http"

	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/storage"
	"github.com/rs/zerolog"
)

// AdminHandler handles manual clock ticks and resets
type AdminHandler struct {
	store    *leadqueue.Store
	outcomes storage.Store
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(store *leadqueue.Store, outcomes storage.Store, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:    store,
		outcomes: outcomes,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// Tick handles POST /api/admin/tick, advancing every wait by one tick
func (h *AdminHandler) Tick(w http.ResponseWriter, r *http.Request) {
	advanced := h.store.AdvanceTime()
	metrics.Get().RecordTick()

	h.logger.Info().Int("leads", advanced).Msg("manual tick applied")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "tick applied",
		"advanced":    advanced,
		"tickMinutes": h.store.TickMinutes(),
	})
}

// WipeLeads handles DELETE /api/admin/leads
func (h *AdminHandler) WipeLeads(w http.ResponseWriter, r *http.Request) {
	cleared := h.store.Wipe()

	h.logger.Info().Int("cleared", cleared).Msg("all leads wiped via admin")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "all leads wiped",
		"cleared": cleared,
	})
}

// WipeOutcomes handles DELETE /api/admin/outcomes, truncating the outcome table
func (h *AdminHandler) WipeOutcomes(w http.ResponseWriter, r *http.Request) {
	if err := h.outcomes.TruncateAll(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate outcome table")
		writeError(w, http.StatusInternalServerError, "failed to truncate: "+err.Error())
		return
	}

	h.logger.Info().Msg("outcome table truncated")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "outcomes truncated",
	})
}
