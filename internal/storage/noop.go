package storage

import (
	"context"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// Store persists leads leaving the queue. Only raw lead attributes are
// stored, never derived scores.
type Store interface {
	RecordOutcome(ctx context.Context, outcome types.LeadOutcome) error
	GetOutcomes(ctx context.Context, dateKey string) ([]types.LeadOutcome, error)
	GetAgentOutcomes(ctx context.Context, agentID, dateKey string) ([]types.LeadOutcome, error)
	TruncateAll(ctx context.Context) error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) RecordOutcome(_ context.Context, _ types.LeadOutcome) error                   { return nil }
func (s *NoopStore) GetOutcomes(_ context.Context, _ string) ([]types.LeadOutcome, error)         { return nil, nil }
func (s *NoopStore) GetAgentOutcomes(_ context.Context, _, _ string) ([]types.LeadOutcome, error) { return nil, nil }
func (s *NoopStore) TruncateAll(_ context.Context) error                                          { return nil }
