package scoring

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// Weights holds the coefficient applied to each factor. They must sum to 1.
type Weights struct {
	WaitTime        float64
	LeadScore       float64
	SLARisk         float64
	BusinessValue   float64
	EngagementLevel float64
	TimeZone        float64
	Availability    float64
}

// DefaultWeights returns the production weighting
func DefaultWeights() Weights {
	return Weights{
		WaitTime:        0.20,
		LeadScore:       0.25,
		SLARisk:         0.20,
		BusinessValue:   0.15,
		EngagementLevel: 0.10,
		TimeZone:        0.05,
		Availability:    0.05,
	}
}

// Sum returns the total of all coefficients
func (w Weights) Sum() float64 {
	return w.WaitTime + w.LeadScore + w.SLARisk + w.BusinessValue +
		w.EngagementLevel + w.TimeZone + w.Availability
}

// Validate checks that every weight is non-negative and the total is 1
func (w Weights) Validate() error {
	for _, weight := range []struct {
		name  string
		value float64
	}{
		{"waitTime", w.WaitTime},
		{"leadScore", w.LeadScore},
		{"slaRisk", w.SLARisk},
		{"businessValue", w.BusinessValue},
		{"engagementLevel", w.EngagementLevel},
		{"timeZone", w.TimeZone},
		{"availability", w.Availability},
	} {
		if weight.value < 0 || math.IsNaN(weight.value) {
			return fmt.Errorf("weight %s must be non-negative, got %v", weight.name, weight.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	return nil
}

// Apply computes the weighted sum of a factor breakdown
func (w Weights) Apply(f types.Factors) float64 {
	return f.WaitTime*w.WaitTime +
		f.LeadScore*w.LeadScore +
		f.SLARisk*w.SLARisk +
		f.BusinessValue*w.BusinessValue +
		f.EngagementLevel*w.EngagementLevel +
		f.TimeZone*w.TimeZone +
		f.Availability*w.Availability
}

// scorePrecision drops float noise from the weighted sum so that a score
// landing on a level boundary compares as exactly that boundary
const scorePrecision = 1e9

func roundScore(score float64) float64 {
	return math.Round(score*scorePrecision) / scorePrecision
}

// LevelFor maps a weighted score onto a priority level.
// Bands are exclusive on the lower side: exactly 0.8 is high.
func LevelFor(score float64) types.PriorityLevel {
	switch {
	case score > 0.8:
		return types.LevelCritical
	case score > 0.6:
		return types.LevelHigh
	case score > 0.4:
		return types.LevelMedium
	case score > 0.2:
		return types.LevelNormal
	default:
		return types.LevelLow
	}
}

// Result is the scoring outcome for a single lead
type Result struct {
	Score   float64
	Percent int
	Level   types.PriorityLevel
	Factors types.Factors
}

// Scorer turns raw lead attributes into a priority score
type Scorer struct {
	weights   Weights
	clock     Clock
	locations sync.Map // tz name -> *time.Location
}

// NewScorer creates a Scorer after checking the weights once
func NewScorer(weights Weights, clock Clock) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Scorer{
		weights: weights,
		clock:   clock,
	}, nil
}

// Weights returns the coefficients in use
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score validates the lead and computes its factors, weighted score and level
func (s *Scorer) Score(lead *types.Lead) (Result, error) {
	loc, err := s.validate(lead)
	if err != nil {
		return Result{}, err
	}

	factors := types.Factors{
		WaitTime:        WaitTimeFactor(lead.WaitMinutes),
		LeadScore:       LeadScoreFactor(lead.Score),
		SLARisk:         SLARiskFactor(lead),
		BusinessValue:   BusinessValueFactor(lead),
		EngagementLevel: EngagementFactor(lead),
		TimeZone:        TimeZoneFactor(s.clock.Now(), loc),
		Availability:    AvailabilityFactor(lead),
	}

	score := roundScore(s.weights.Apply(factors))
	return Result{
		Score:   score,
		Percent: int(math.Round(score * 100)),
		Level:   LevelFor(score),
		Factors: factors,
	}, nil
}

// validate rejects malformed leads and resolves the lead's time zone
func (s *Scorer) validate(lead *types.Lead) (*time.Location, error) {
	invalid := func(field string, err error) error {
		return &ValidationError{LeadID: lead.ID, Field: field, Err: err}
	}

	if lead.ID == "" {
		return nil, invalid("id", ErrMissingID)
	}
	if lead.WaitMinutes < 0 {
		return nil, invalid("waitMinutes", ErrNegativeWait)
	}
	if math.IsNaN(lead.Score) || lead.Score < 0 || lead.Score > 100 {
		return nil, invalid("score", ErrScoreOutOfRange)
	}
	if lead.SLAMinutes != nil && *lead.SLAMinutes <= 0 {
		return nil, invalid("slaMinutes", ErrInvalidSLA)
	}
	if lead.RecentActions < 0 {
		return nil, invalid("recentActions", ErrNegativeCount)
	}
	if lead.EmailsSent < 0 {
		return nil, invalid("emailsSent", ErrNegativeCount)
	}
	if lead.CallsMade < 0 {
		return nil, invalid("callsMade", ErrNegativeCount)
	}
	if lead.CompanySize < 0 {
		return nil, invalid("companySize", ErrNegativeCount)
	}
	if lead.LastSeenMinutes < 0 {
		return nil, invalid("lastSeenMinutes", ErrNegativeCount)
	}
	if lead.DealSize != nil && (*lead.DealSize < 0 || math.IsNaN(*lead.DealSize)) {
		return nil, invalid("dealSize", ErrNegativeDealSize)
	}

	loc, err := s.location(lead.TimeZone)
	if err != nil {
		return nil, invalid("timeZone", fmt.Errorf("%w: %s", ErrInvalidTimeZone, lead.TimeZone))
	}
	return loc, nil
}

// location resolves an IANA zone name; empty means the evaluator's zone
func (s *Scorer) location(name string) (*time.Location, error) {
	if name == "" {
		return s.clock.Now().Location(), nil
	}
	if cached, ok := s.locations.Load(name); ok {
		return cached.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	s.locations.Store(name, loc)
	return loc, nil
}
