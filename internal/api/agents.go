package api

import (
	"encoding/json"
	"net/http"

	"github.com/dennisdiepolder/monti/leadqueue/internal/roster"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// availabilityRequest is the JSON body for PUT /api/agents/{agentId}/availability
type availabilityRequest struct {
	Availability *float64 `json:"availability"`
}

// AgentHandler exposes the matching roster
type AgentHandler struct {
	directory *roster.Directory
	logger    zerolog.Logger
}

// NewAgentHandler creates a new AgentHandler
func NewAgentHandler(directory *roster.Directory, logger zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		directory: directory,
		logger:    logger.With().Str("component", "roster").Logger(),
	}
}

// ListAgents handles GET /api/agents
func (h *AgentHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents := h.directory.ListAgents()
	writeJSON(w, http.StatusOK, struct {
		Agents []types.Agent `json:"agents"`
		Count  int           `json:"count"`
	}{agents, len(agents)})
}

// SetAvailability handles PUT /api/agents/{agentId}/availability
func (h *AgentHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Availability == nil {
		writeError(w, http.StatusBadRequest, "missing availability field")
		return
	}

	if err := h.directory.SetAvailability(agentID, *req.Availability); err != nil {
		writeErr(w, err)
		return
	}

	agent, _ := h.directory.Get(agentID)
	h.logger.Info().
		Str("agent_id", agentID).
		Float64("availability", agent.Availability).
		Msg("agent availability updated")

	writeJSON(w, http.StatusOK, agent)
}
