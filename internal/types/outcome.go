package types

import "time"

// OutcomeKind describes how a lead left the queue
type OutcomeKind string

const (
	OutcomeRouted    OutcomeKind = "routed"    // Handed to an agent
	OutcomeAbandoned OutcomeKind = "abandoned" // Lead left before being routed
)

// LeadOutcome records a lead leaving the queue.
// Only raw lead attributes are kept; scores are never persisted.
type LeadOutcome struct {
	DateKey     string      `json:"dateKey" dynamodbav:"DateKey"` // YYYY-MM-DD (partition key)
	LeadID      string      `json:"leadId" dynamodbav:"LeadID"`   // sort key
	Kind        OutcomeKind `json:"kind" dynamodbav:"Kind"`
	AgentID     string      `json:"agentId,omitempty" dynamodbav:"AgentID"`
	Company     string      `json:"company" dynamodbav:"Company"`
	WaitMinutes int         `json:"waitMinutes" dynamodbav:"WaitMinutes"`
	SLAMinutes  int         `json:"slaMinutes" dynamodbav:"SLAMinutes"`
	WithinSLA   bool        `json:"withinSLA" dynamodbav:"WithinSLA"`
	Tags        []string    `json:"tags,omitempty" dynamodbav:"Tags"`
	Timestamp   time.Time   `json:"timestamp" dynamodbav:"Timestamp"`
}

// ServiceLevel tracks how many routed leads were handled inside their SLA
type ServiceLevel struct {
	RoutedInSLA int     `json:"routedInSLA"`
	TotalRouted int     `json:"totalRouted"`
	Abandoned   int     `json:"abandoned"`
	CurrentSL   float64 `json:"currentSL"` // percentage
}
