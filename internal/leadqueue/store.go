package leadqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTickMinutes is how far one AdvanceTime call moves every wait
const DefaultTickMinutes = 1

var (
	// ErrDuplicateLead is returned when a lead ID is already queued
	ErrDuplicateLead = errors.New("lead already queued")
	// ErrInvalidOutcome is returned for outcomes the store cannot record
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// recordTimeout bounds a single outcome write to the configured sinks
const recordTimeout = 5 * time.Second

// Outcome describes why a lead is leaving the queue
type Outcome struct {
	Kind    types.OutcomeKind
	AgentID string // required for routed leads
}

// Routed returns a routed outcome for the given agent
func Routed(agentID string) Outcome {
	return Outcome{Kind: types.OutcomeRouted, AgentID: agentID}
}

// Abandoned returns an abandoned outcome
func Abandoned() Outcome {
	return Outcome{Kind: types.OutcomeAbandoned}
}

// Validate checks the outcome kind and its agent
func (o Outcome) Validate() error {
	switch o.Kind {
	case types.OutcomeRouted:
		if strings.TrimSpace(o.AgentID) == "" {
			return fmt.Errorf("%w: routed lead needs an agent", ErrInvalidOutcome)
		}
	case types.OutcomeAbandoned:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOutcome, o.Kind)
	}
	return nil
}

// Store owns the canonical lead collection. Scoring never happens here;
// readers take a Snapshot and rank it themselves.
type Store struct {
	leads       []*types.Lead
	index       map[string]*types.Lead
	sl          SLTracker
	tickMinutes int
	recorder    OutcomeRecorder
	pending     sync.WaitGroup // in-flight outcome writes
	now         func() time.Time
	mu          sync.RWMutex
	logger      zerolog.Logger
}

// NewStore creates an empty store. tickMinutes below 1 uses DefaultTickMinutes.
func NewStore(tickMinutes int, logger zerolog.Logger) *Store {
	if tickMinutes < 1 {
		tickMinutes = DefaultTickMinutes
	}
	return &Store{
		index:       make(map[string]*types.Lead),
		tickMinutes: tickMinutes,
		now:         time.Now,
		logger:      logger.With().Str("component", "leadqueue").Logger(),
	}
}

// SetRecorder sets the sink for leads leaving the queue
func (s *Store) SetRecorder(recorder OutcomeRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = recorder
}

// TickMinutes returns the minutes added per AdvanceTime call
func (s *Store) TickMinutes() int {
	return s.tickMinutes
}

// Add queues a copy of the lead and returns the stored version.
// An empty ID is replaced with a generated one and tags are de-duplicated.
func (s *Store) Add(lead types.Lead) (types.Lead, error) {
	stored := lead.Clone()
	stored.ID = strings.TrimSpace(stored.ID)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.Tags = dedupeTags(stored.Tags)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[stored.ID]; exists {
		return types.Lead{}, fmt.Errorf("%w: %s", ErrDuplicateLead, stored.ID)
	}

	s.leads = append(s.leads, &stored)
	s.index[stored.ID] = &stored

	s.logger.Debug().
		Str("lead_id", stored.ID).
		Str("company", stored.Company).
		Int("queue_depth", len(s.leads)).
		Msg("lead enqueued")

	return stored.Clone(), nil
}

// Remove takes a lead out of the queue and records the outcome.
// It returns false when the lead is not queued or the outcome is invalid.
func (s *Store) Remove(id string, outcome Outcome) (types.Lead, bool) {
	if err := outcome.Validate(); err != nil {
		s.logger.Warn().Err(err).Str("lead_id", id).Msg("rejected lead removal")
		return types.Lead{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.index[id]
	if !ok {
		return types.Lead{}, false
	}

	delete(s.index, id)
	for i, l := range s.leads {
		if l == lead {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			break
		}
	}

	withinSLA := scoring.RemainingSLAMinutes(lead) >= 0
	switch outcome.Kind {
	case types.OutcomeRouted:
		s.sl.RecordRouted(withinSLA)
	case types.OutcomeAbandoned:
		s.sl.RecordAbandoned()
	}

	s.logger.Debug().
		Str("lead_id", id).
		Str("outcome", string(outcome.Kind)).
		Str("agent_id", outcome.AgentID).
		Int("wait_minutes", lead.WaitMinutes).
		Bool("within_sla", withinSLA).
		Msg("lead removed")

	if s.recorder != nil {
		record := toOutcome(lead, outcome, withinSLA, s.now())
		recorder := s.recorder
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := recorder.RecordOutcome(ctx, record); err != nil {
				s.logger.Error().Err(err).Str("lead_id", record.LeadID).Msg("failed to record lead outcome")
			}
		}()
	}

	return lead.Clone(), true
}

// Flush waits for in-flight outcome writes. Call it once removals have
// stopped and before the sinks are closed.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("outcome writes still pending: %w", ctx.Err())
	}
}

// AdvanceTime adds one tick to every queued lead's wait and returns how
// many leads were touched.
func (s *Store) AdvanceTime() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lead := range s.leads {
		lead.WaitMinutes += s.tickMinutes
	}
	return len(s.leads)
}

// Snapshot returns a deep copy of the queue in insertion order
func (s *Store) Snapshot() []types.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Lead, len(s.leads))
	for i, lead := range s.leads {
		out[i] = lead.Clone()
	}
	return out
}

// Get returns a copy of a single queued lead
func (s *Store) Get(id string) (types.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.index[id]
	if !ok {
		return types.Lead{}, false
	}
	return lead.Clone(), true
}

// Len returns the number of queued leads
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// Wipe clears every queued lead, returning how many were removed.
// Wiped leads are not counted as abandoned.
func (s *Store) Wipe() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.leads)
	s.leads = nil
	s.index = make(map[string]*types.Lead)

	s.logger.Info().Int("cleared", count).Msg("wiped all leads from queue")
	return count
}

// ServiceLevel returns the running service level since startup
func (s *Store) ServiceLevel() types.ServiceLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sl.Snapshot()
}

// dedupeTags drops blank and repeated tags, keeping first-seen order
func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// toOutcome converts a departing lead into its persisted form
func toOutcome(lead *types.Lead, outcome Outcome, withinSLA bool, now time.Time) types.LeadOutcome {
	sla := scoring.DefaultSLAMinutes
	if lead.SLAMinutes != nil {
		sla = *lead.SLAMinutes
	}
	return types.LeadOutcome{
		DateKey:     now.Format("2006-01-02"),
		LeadID:      lead.ID,
		Kind:        outcome.Kind,
		AgentID:     outcome.AgentID,
		Company:     lead.Company,
		WaitMinutes: lead.WaitMinutes,
		SLAMinutes:  sla,
		WithinSLA:   withinSLA,
		Tags:        append([]string(nil), lead.Tags...),
		Timestamp:   now.UTC(),
	}
}
