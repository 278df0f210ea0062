package types

// PriorityLevel is the discrete band a lead's weighted score falls into
type PriorityLevel string

const (
	LevelCritical PriorityLevel = "critical"
	LevelHigh     PriorityLevel = "high"
	LevelMedium   PriorityLevel = "medium"
	LevelNormal   PriorityLevel = "normal"
	LevelLow      PriorityLevel = "low"
)

// AllLevels lists priority levels from most to least urgent
var AllLevels = []PriorityLevel{
	LevelCritical,
	LevelHigh,
	LevelMedium,
	LevelNormal,
	LevelLow,
}

// Valid reports whether l is one of the known levels
func (l PriorityLevel) Valid() bool {
	for _, known := range AllLevels {
		if l == known {
			return true
		}
	}
	return false
}

// Well-known tags that influence business value
const (
	TagEnterprise = "Enterprise"
	TagHotLead    = "Hot Lead"
)

// Lead represents a queued sales/support lead.
// Derived values (score, level, recommendation) are never stored here;
// see ScoredLead.
type Lead struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`

	CompanySize int      `json:"companySize"`
	DealSize    *float64 `json:"dealSize,omitempty"`

	Score float64 `json:"score"` // externally assigned quality, 0-100

	RecentActions int `json:"recentActions"`
	EmailsSent    int `json:"emailsSent"`
	CallsMade     int `json:"callsMade"`

	WaitMinutes int  `json:"waitMinutes"`          // elapsed time in queue
	SLAMinutes  *int `json:"slaMinutes,omitempty"` // nil means the default SLA applies

	Online          bool   `json:"online"`
	LastSeenMinutes int    `json:"lastSeenMinutes"`
	TimeZone        string `json:"timeZone,omitempty"` // IANA identifier

	Tags []string `json:"tags"`
}

// HasTag reports whether the lead carries the exact tag
func (l *Lead) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with l
func (l Lead) Clone() Lead {
	c := l
	if l.Tags != nil {
		c.Tags = append([]string(nil), l.Tags...)
	}
	if l.DealSize != nil {
		v := *l.DealSize
		c.DealSize = &v
	}
	if l.SLAMinutes != nil {
		v := *l.SLAMinutes
		c.SLAMinutes = &v
	}
	return c
}

// Factors is the per-factor breakdown of a lead's priority score.
// Every value lies in [0,1].
type Factors struct {
	WaitTime        float64 `json:"waitTime"`
	LeadScore       float64 `json:"leadScore"`
	SLARisk         float64 `json:"slaRisk"`
	BusinessValue   float64 `json:"businessValue"`
	EngagementLevel float64 `json:"engagementLevel"`
	TimeZone        float64 `json:"timeZone"`
	Availability    float64 `json:"availability"`
}

// RecommendedAction is the next step suggested for a lead
type RecommendedAction string

const (
	ActionImmediateCall   RecommendedAction = "immediate_call"
	ActionPriorityEngage  RecommendedAction = "priority_engage"
	ActionApologizeEngage RecommendedAction = "apologize_engage"
	ActionStandardEngage  RecommendedAction = "standard_engage"
)

// Recommendation pairs an action with the reason it was chosen
type Recommendation struct {
	Action RecommendedAction `json:"action"`
	Reason string            `json:"reason"`
}

// AlertSeverity represents the severity of a lead alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// LeadAlert represents an alert condition on a queued lead
type LeadAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ScoredLead is a lead annotated with everything the engine derives from it.
// It is rebuilt on every ranking pass.
type ScoredLead struct {
	Lead           Lead           `json:"lead"`
	Score          float64        `json:"score"`        // weighted sum in [0,1]
	ScorePercent   int            `json:"scorePercent"` // rounded for display
	Level          PriorityLevel  `json:"level"`
	Factors        Factors        `json:"factors"`
	Recommendation Recommendation `json:"recommendation"`
	Agent          *AgentMatch    `json:"agent,omitempty"`
	Alerts         []LeadAlert    `json:"alerts,omitempty"`
}

// QueueStats contains aggregate counts over a ranked queue
type QueueStats struct {
	Total          int                   `json:"total"`
	AvgWaitMinutes float64               `json:"avgWaitMinutes"`
	SLAAtRisk      int                   `json:"slaAtRisk"`
	LevelBreakdown map[PriorityLevel]int `json:"levelBreakdown"`
	Rejected       int                   `json:"rejected"`
}
