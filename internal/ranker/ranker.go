package ranker

import (
	"sort"

	"github.com/dennisdiepolder/monti/leadqueue/internal/alerts"
	"github.com/dennisdiepolder/monti/leadqueue/internal/matcher"
	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// Rejection reports a lead that could not be scored
type Rejection struct {
	LeadID string `json:"leadId"`
	Error  string `json:"error"`
	Err    error  `json:"-"`
}

// Result is an ordered, annotated view of the queue
type Result struct {
	Query    Query              `json:"-"`
	Leads    []types.ScoredLead `json:"leads"`
	Rejected []Rejection        `json:"rejected,omitempty"`
	Stats    types.QueueStats   `json:"stats"`
}

// Ranker scores, annotates, orders and filters a lead collection
type Ranker struct {
	scorer  *scoring.Scorer
	matcher *matcher.Matcher
}

// New creates a Ranker
func New(scorer *scoring.Scorer, matcher *matcher.Matcher) *Ranker {
	return &Ranker{
		scorer:  scorer,
		matcher: matcher,
	}
}

// Rank scores every lead and returns them ordered by q.Sort.
// A lead that fails validation is reported in Result.Rejected and the
// rest of the batch is still ranked. Stats cover every scored lead that
// matched the search, including those removed by the level filter.
func (r *Ranker) Rank(leads []types.Lead, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{Query: q}
	scored := make([]types.ScoredLead, 0, len(leads))

	for i := range leads {
		lead := &leads[i]
		if !q.matchesSearch(lead) {
			continue
		}

		sl, err := r.Evaluate(lead)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{
				LeadID: lead.ID,
				Error:  err.Error(),
				Err:    err,
			})
			continue
		}
		scored = append(scored, sl)
	}

	result.Stats = computeStats(scored)
	result.Stats.Rejected = len(result.Rejected)

	sort.SliceStable(scored, less(scored, q.Sort))

	if q.Level != "" {
		filtered := scored[:0]
		for _, sl := range scored {
			if sl.Level == q.Level {
				filtered = append(filtered, sl)
			}
		}
		scored = filtered
	}

	alerts.CheckLeadAlerts(scored)
	result.Leads = scored
	return result, nil
}

// Evaluate scores a single lead and attaches its recommendation and agent
func (r *Ranker) Evaluate(lead *types.Lead) (types.ScoredLead, error) {
	res, err := r.scorer.Score(lead)
	if err != nil {
		return types.ScoredLead{}, err
	}

	sl := types.ScoredLead{
		Lead:           lead.Clone(),
		Score:          res.Score,
		ScorePercent:   res.Percent,
		Level:          res.Level,
		Factors:        res.Factors,
		Recommendation: scoring.Recommend(res.Factors),
	}
	if r.matcher != nil {
		if match, ok := r.matcher.Best(lead); ok {
			sl.Agent = &match
		}
	}
	return sl, nil
}

// less returns a descending comparator for the sort key
func less(leads []types.ScoredLead, key SortKey) func(i, j int) bool {
	switch key {
	case SortWaitTime:
		return func(i, j int) bool { return leads[i].Lead.WaitMinutes > leads[j].Lead.WaitMinutes }
	case SortLeadScore:
		return func(i, j int) bool { return leads[i].Lead.Score > leads[j].Lead.Score }
	default:
		return func(i, j int) bool { return leads[i].Score > leads[j].Score }
	}
}

func computeStats(leads []types.ScoredLead) types.QueueStats {
	stats := types.QueueStats{
		Total:          len(leads),
		LevelBreakdown: make(map[types.PriorityLevel]int, len(types.AllLevels)),
	}
	for _, level := range types.AllLevels {
		stats.LevelBreakdown[level] = 0
	}
	if len(leads) == 0 {
		return stats
	}

	totalWait := 0
	for i := range leads {
		lead := &leads[i].Lead
		totalWait += lead.WaitMinutes
		if scoring.RemainingSLAMinutes(lead) < scoring.SLARiskThreshold {
			stats.SLAAtRisk++
		}
		stats.LevelBreakdown[leads[i].Level]++
	}
	stats.AvgWaitMinutes = float64(totalWait) / float64(len(leads))
	return stats
}
