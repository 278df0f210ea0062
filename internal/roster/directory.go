package roster

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownAgent is returned when an agent ID is not on the roster
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrInvalidAvailability is returned for availability outside [0,1]
	ErrInvalidAvailability = errors.New("availability must be within [0,1]")
)

// File is the on-disk roster layout
type File struct {
	Agents []types.Agent `yaml:"agents"`
}

// Directory maintains the agent roster used for matching
type Directory struct {
	agents []types.Agent  // roster order matters for tie-breaking
	index  map[string]int // agentID -> position in agents
	mu     sync.RWMutex
}

// NewDirectory creates a directory from the given agents
func NewDirectory(agents []types.Agent) (*Directory, error) {
	d := &Directory{}
	if err := d.Replace(agents); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile reads a YAML roster file
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	return NewDirectory(file.Agents)
}

// Replace swaps the whole roster after validating every entry
func (d *Directory) Replace(agents []types.Agent) error {
	index := make(map[string]int, len(agents))
	copied := make([]types.Agent, 0, len(agents))

	for i, agent := range agents {
		if agent.ID == "" {
			return fmt.Errorf("roster entry %d: missing id", i)
		}
		if _, dup := index[agent.ID]; dup {
			return fmt.Errorf("roster entry %d: duplicate id %q", i, agent.ID)
		}
		if !validAvailability(agent.Availability) {
			return fmt.Errorf("roster entry %q: %w", agent.ID, ErrInvalidAvailability)
		}
		agent.Skills = append([]string(nil), agent.Skills...)
		index[agent.ID] = len(copied)
		copied = append(copied, agent)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents = copied
	d.index = index
	return nil
}

// ListAgents returns a copy of the roster in declared order
func (d *Directory) ListAgents() []types.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	agents := make([]types.Agent, len(d.agents))
	copy(agents, d.agents)
	return agents
}

// Get returns a single agent
func (d *Directory) Get(agentID string) (types.Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.index[agentID]
	if !ok {
		return types.Agent{}, false
	}
	return d.agents[i], true
}

// SetAvailability updates an agent's availability fraction
func (d *Directory) SetAvailability(agentID string, availability float64) error {
	if !validAvailability(availability) {
		return ErrInvalidAvailability
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.index[agentID]
	if !ok {
		return ErrUnknownAgent
	}
	d.agents[i].Availability = availability
	return nil
}

// validAvailability accepts fractions in [0,1] and rejects NaN
func validAvailability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Count returns the number of agents on the roster
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.agents)
}

// DemoAgents is the sample roster used when no roster file is configured
func DemoAgents() []types.Agent {
	return []types.Agent{
		{ID: "agent-1", Name: "Sarah Chen", Skills: []string{"Enterprise", "SaaS", "Technical"}, Availability: 0.9},
		{ID: "agent-2", Name: "Marcus Weber", Skills: []string{"Hot Lead", "SMB", "Retail"}, Availability: 0.7},
		{ID: "agent-3", Name: "Priya Nair", Skills: []string{"Enterprise", "Finance", "Hot Lead"}, Availability: 0.6},
		{ID: "agent-4", Name: "Tom Alvarez", Skills: []string{"Healthcare", "Technical"}, Availability: 0.8},
	}
}
