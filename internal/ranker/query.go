package ranker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// SortKey selects the ordering of a ranked queue
type SortKey string

const (
	SortPriority  SortKey = "priority"
	SortWaitTime  SortKey = "waitTime"
	SortLeadScore SortKey = "leadScore"
)

var (
	// ErrInvalidSortKey is returned for sort keys the ranker does not know
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrInvalidLevel is returned for filter levels outside the known bands
	ErrInvalidLevel = errors.New("invalid priority level")
)

// Query describes how the caller wants the queue ranked
type Query struct {
	Sort   SortKey
	Level  types.PriorityLevel // empty means no level filter
	Search string              // case-insensitive match on name or company
}

// ParseQuery builds a Query from raw caller input.
// An omitted sort key means priority; an unknown one is an error.
func ParseQuery(sort, level, search string) (Query, error) {
	q := Query{
		Sort:   SortKey(strings.TrimSpace(sort)),
		Level:  types.PriorityLevel(strings.TrimSpace(level)),
		Search: strings.TrimSpace(search),
	}
	if q.Sort == "" {
		q.Sort = SortPriority
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Validate rejects unknown sort keys and levels
func (q Query) Validate() error {
	switch q.Sort {
	case SortPriority, SortWaitTime, SortLeadScore:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortKey, q.Sort)
	}
	if q.Level != "" && !q.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, q.Level)
	}
	return nil
}

// matchesSearch reports whether the lead's name or company contains the search text
func (q Query) matchesSearch(lead *types.Lead) bool {
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(lead.Name), needle) ||
		strings.Contains(strings.ToLower(lead.Company), needle)
}
