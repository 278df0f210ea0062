package types

// Agent is a roster entry that leads can be matched against
type Agent struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Skills       []string `json:"skills" yaml:"skills"`
	Availability float64  `json:"availability" yaml:"availability"` // fraction in [0,1]
}

// HasSkill reports whether the agent lists the exact skill
func (a *Agent) HasSkill(skill string) bool {
	for _, s := range a.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// AgentMatch is the best agent for a lead together with its match score
type AgentMatch struct {
	Agent      Agent    `json:"agent"`
	MatchScore float64  `json:"matchScore"`
	Matched    []string `json:"matchedSkills,omitempty"` // lead tags the agent covers
}
