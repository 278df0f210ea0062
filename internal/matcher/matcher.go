package matcher

import (
	"sort"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// SkillBonus is added to an agent's match score for every lead tag it covers
const SkillBonus = 0.2

// AgentDirectory lists the agents leads can be matched against
type AgentDirectory interface {
	ListAgents() []types.Agent
}

// StaticDirectory is a fixed, in-memory roster
type StaticDirectory []types.Agent

// ListAgents returns the roster in its declared order
func (d StaticDirectory) ListAgents() []types.Agent {
	return d
}

// Matcher picks the best agent for a lead
type Matcher struct {
	directory AgentDirectory
}

// New creates a Matcher over the given directory
func New(directory AgentDirectory) *Matcher {
	return &Matcher{directory: directory}
}

// Best returns the highest scoring agent for the lead.
// Ties keep roster order. It returns false when the roster is empty.
func (m *Matcher) Best(lead *types.Lead) (types.AgentMatch, bool) {
	ranked := m.Rank(lead)
	if len(ranked) == 0 {
		return types.AgentMatch{}, false
	}
	return ranked[0], true
}

// Rank scores every agent against the lead, best first
func (m *Matcher) Rank(lead *types.Lead) []types.AgentMatch {
	if m.directory == nil {
		return nil
	}
	agents := m.directory.ListAgents()
	if len(agents) == 0 {
		return nil
	}

	matches := make([]types.AgentMatch, 0, len(agents))
	for _, agent := range agents {
		matches = append(matches, score(lead, agent))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}

// score computes one agent's match without touching the roster entry
func score(lead *types.Lead, agent types.Agent) types.AgentMatch {
	match := types.AgentMatch{
		Agent:      agent,
		MatchScore: agent.Availability,
	}
	for _, tag := range lead.Tags {
		if agent.HasSkill(tag) {
			match.MatchScore += SkillBonus
			match.Matched = append(match.Matched, tag)
		}
	}
	return match
}
