package types

import "time"

// QueueSnapshot is the payload pushed to dashboard clients every broadcast.
// Each client receives the queue ranked according to its own view.
type QueueSnapshot struct {
	Type         string       `json:"type"` // always "queue_snapshot"
	Timestamp    time.Time    `json:"timestamp"`
	View         ViewRequest  `json:"view"`
	Leads        []ScoredLead `json:"leads"`
	Stats        QueueStats   `json:"stats"`
	ServiceLevel ServiceLevel `json:"serviceLevel"`
}

// ViewRequest is sent by a dashboard client to change how its queue is ranked
type ViewRequest struct {
	Type   string `json:"type"` // "view"
	Sort   string `json:"sort,omitempty"`
	Level  string `json:"level,omitempty"`
	Search string `json:"search,omitempty"`
}

// ErrorMessage is sent to a client when one of its requests is rejected
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}
