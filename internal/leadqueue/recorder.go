package leadqueue

import (
	"context"
	"errors"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// OutcomeRecorder persists or publishes leads leaving the queue
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, outcome types.LeadOutcome) error
}

// MultiRecorder fans an outcome out to every configured sink.
// A failing sink does not stop the others.
type MultiRecorder []OutcomeRecorder

// RecordOutcome implements OutcomeRecorder
func (m MultiRecorder) RecordOutcome(ctx context.Context, outcome types.LeadOutcome) error {
	var errs []error
	for _, rec := range m {
		if rec == nil {
			continue
		}
		if err := rec.RecordOutcome(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
