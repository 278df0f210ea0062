package scoring

import (
	"errors"
	"fmt"
)

// ValidationError reports why a lead could not be scored
type ValidationError struct {
	LeadID string
	Field  string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid lead %q: %s: %v", e.LeadID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Sentinel errors for malformed leads
var (
	ErrMissingID        = errors.New("missing id")
	ErrNegativeWait     = errors.New("negative wait time")
	ErrScoreOutOfRange  = errors.New("score outside 0-100")
	ErrInvalidSLA       = errors.New("sla must be a positive number of minutes")
	ErrNegativeCount    = errors.New("negative count")
	ErrNegativeDealSize = errors.New("negative deal size")
	ErrInvalidTimeZone  = errors.New("unknown time zone")
)
