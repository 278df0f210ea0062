package api

import (
	"net/http"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/storage"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const dateKeyLayout = "2006-01-02"

// OutcomeHandler serves persisted lead outcomes
type OutcomeHandler struct {
	store  storage.Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewOutcomeHandler creates a new OutcomeHandler
func NewOutcomeHandler(store storage.Store, logger zerolog.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "outcomes").Logger(),
	}
}

// dateKey returns the ?date= parameter, defaulting to today in UTC
func (h *OutcomeHandler) dateKey(r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return h.now().UTC().Format(dateKeyLayout), true
	}
	if _, err := time.Parse(dateKeyLayout, date); err != nil {
		return "", false
	}
	return date, true
}

// GetOutcomes handles GET /api/outcomes?date=YYYY-MM-DD
func (h *OutcomeHandler) GetOutcomes(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	outcomes, err := h.store.GetOutcomes(r.Context(), date)
	if err != nil {
		h.logger.Error().Err(err).Str("date", date).Msg("failed to load outcomes")
		writeError(w, http.StatusInternalServerError, "failed to load outcomes")
		return
	}
	h.respond(w, date, outcomes)
}

// GetAgentOutcomes handles GET /api/agents/{agentId}/outcomes?date=YYYY-MM-DD
func (h *OutcomeHandler) GetAgentOutcomes(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	date, ok := h.dateKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	outcomes, err := h.store.GetAgentOutcomes(r.Context(), agentID, date)
	if err != nil {
		h.logger.Error().Err(err).Str("agent_id", agentID).Str("date", date).Msg("failed to load agent outcomes")
		writeError(w, http.StatusInternalServerError, "failed to load outcomes")
		return
	}
	h.respond(w, date, outcomes)
}

func (h *OutcomeHandler) respond(w http.ResponseWriter, date string, outcomes []types.LeadOutcome) {
	if outcomes == nil {
		outcomes = []types.LeadOutcome{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":     date,
		"outcomes": outcomes,
		"count":    len(outcomes),
	})
}
