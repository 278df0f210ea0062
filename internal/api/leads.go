package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/roster"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// createLeadRequest is the JSON body for POST /api/leads.
// Score shadows the embedded field so a missing score can be told apart from 0.
type createLeadRequest struct {
	types.Lead
	Score *float64 `json:"score"`
}

// routeRequest is the JSON body for POST /api/leads/{leadId}/route
type routeRequest struct {
	AgentID string `json:"agentId"`
}

// removalResponse describes a lead that left the queue
type removalResponse struct {
	Lead    types.Lead        `json:"lead"`
	Outcome types.OutcomeKind `json:"outcome"`
	AgentID string            `json:"agentId,omitempty"`
}

// LeadHandler handles enqueueing, inspecting and removing leads
type LeadHandler struct {
	store     *leadqueue.Store
	ranker    *ranker.Ranker
	directory *roster.Directory
	logger    zerolog.Logger
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(store *leadqueue.Store, r *ranker.Ranker, directory *roster.Directory, logger zerolog.Logger) *LeadHandler {
	return &LeadHandler{
		store:     store,
		ranker:    r,
		directory: directory,
		logger:    logger.With().Str("component", "lead_api").Logger(),
	}
}

// CreateLead handles POST /api/leads and POST /internal/leads.
// The lead is validated before it is queued, so the queue never holds
// a lead that cannot be scored.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Score == nil {
		writeError(w, http.StatusBadRequest, "missing score field")
		return
	}

	lead := req.Lead
	lead.Score = *req.Score
	lead.ID = strings.TrimSpace(lead.ID)
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}

	if _, err := h.ranker.Evaluate(&lead); err != nil {
		writeErr(w, err)
		return
	}

	stored, err := h.store.Add(lead)
	if err != nil {
		writeErr(w, err)
		return
	}

	scored, err := h.ranker.Evaluate(&stored)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.logger.Info().
		Str("lead_id", stored.ID).
		Str("level", string(scored.Level)).
		Float64("score", scored.Score).
		Msg("lead queued")

	writeJSON(w, http.StatusCreated, scored)
}

// GetLead handles GET /api/leads/{leadId}
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadId")
	lead, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}

	scored, err := h.ranker.Evaluate(&lead)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scored)
}

// RouteLead handles POST /api/leads/{leadId}/route
func (h *LeadHandler) RouteLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadId")

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AgentID == "" {
		writeError(w, http.StatusBadRequest, "missing agentId field")
		return
	}
	if _, ok := h.directory.Get(req.AgentID); !ok {
		writeErr(w, roster.ErrUnknownAgent)
		return
	}

	lead, ok := h.store.Remove(id, leadqueue.Routed(req.AgentID))
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	metrics.Get().RecordOutcome(types.OutcomeRouted)

	h.logger.Info().
		Str("lead_id", id).
		Str("agent_id", req.AgentID).
		Int("wait_minutes", lead.WaitMinutes).
		Msg("lead routed")

	writeJSON(w, http.StatusOK, removalResponse{
		Lead:    lead,
		Outcome: types.OutcomeRouted,
		AgentID: req.AgentID,
	})
}

// AbandonLead handles DELETE /api/leads/{leadId}
func (h *LeadHandler) AbandonLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadId")

	lead, ok := h.store.Remove(id, leadqueue.Abandoned())
	if !ok {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	metrics.Get().RecordOutcome(types.OutcomeAbandoned)

	h.logger.Info().Str("lead_id", id).Int("wait_minutes", lead.WaitMinutes).Msg("lead abandoned")

	writeJSON(w, http.StatusOK, removalResponse{
		Lead:    lead,
		Outcome: types.OutcomeAbandoned,
	})
}
