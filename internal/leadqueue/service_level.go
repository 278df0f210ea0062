package leadqueue

import "github.com/dennisdiepolder/monti/leadqueue/internal/types"

// SLTracker tracks how many routed leads were handled inside their SLA
type SLTracker struct {
	RoutedInSLA int // leads routed before breaching
	TotalRouted int
	Abandoned   int
}

// RecordRouted records a lead being handed to an agent
func (s *SLTracker) RecordRouted(withinSLA bool) {
	s.TotalRouted++
	if withinSLA {
		s.RoutedInSLA++
	}
}

// RecordAbandoned records a lead leaving without being routed
func (s *SLTracker) RecordAbandoned() {
	s.Abandoned++
}

// CurrentSL returns the current service level percentage
func (s *SLTracker) CurrentSL() float64 {
	if s.TotalRouted == 0 {
		return 100.0 // Nothing routed yet, SL is 100%
	}
	return float64(s.RoutedInSLA) / float64(s.TotalRouted) * 100.0
}

// Snapshot returns a ServiceLevel snapshot
func (s *SLTracker) Snapshot() types.ServiceLevel {
	return types.ServiceLevel{
		RoutedInSLA: s.RoutedInSLA,
		TotalRouted: s.TotalRouted,
		Abandoned:   s.Abandoned,
		CurrentSL:   s.CurrentSL(),
	}
}
