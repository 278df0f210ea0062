package leadgen

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

// ErrInvalidConfig is returned when a feed config is out of range
var ErrInvalidConfig = errors.New("invalid feed config")

// LeadAPI is the subset of the server API the feed drives
type LeadAPI interface {
	CreateLead(ctx context.Context, lead types.Lead) error
	Queue(ctx context.Context, sort string) ([]types.ScoredLead, error)
	RouteLead(ctx context.Context, leadID, agentID string) error
	AbandonLead(ctx context.Context, leadID string) error
}

// Config controls the rate and mix of the feed
type Config struct {
	LeadsPerMin  float64 `json:"leadsPerMin"`
	RouteShare   float64 `json:"routeShare"`   // chance per new lead that the top lead gets routed
	AbandonShare float64 `json:"abandonShare"` // chance per new lead that the longest waiting lead leaves
}

// DefaultConfig returns a feed that slowly grows the queue
func DefaultConfig() Config {
	return Config{
		LeadsPerMin:  12,
		RouteShare:   0.6,
		AbandonShare: 0.1,
	}
}

// Validate checks rates and shares
func (c Config) Validate() error {
	if c.LeadsPerMin < 0 {
		return ErrInvalidConfig
	}
	if c.RouteShare < 0 || c.RouteShare > 1 || c.AbandonShare < 0 || c.AbandonShare > 1 {
		return ErrInvalidConfig
	}
	return nil
}

// Stats counts what the feed has done since it was created
type Stats struct {
	Created   int64 `json:"created"`
	Routed    int64 `json:"routed"`
	Abandoned int64 `json:"abandoned"`
	Errors    int64 `json:"errors"`
}

// Feed posts generated leads at the configured rate and drains some of them
type Feed struct {
	api       LeadAPI
	generator *Generator
	logger    zerolog.Logger

	mu     sync.RWMutex
	config Config
	rng    *rand.Rand // guarded by mu

	created   atomic.Int64
	routed    atomic.Int64
	abandoned atomic.Int64
	failed    atomic.Int64
}

// NewFeed creates a feed driving api with leads from generator
func NewFeed(api LeadAPI, generator *Generator, cfg Config, logger zerolog.Logger) (*Feed, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Feed{
		api:       api,
		generator: generator,
		config:    cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logger.With().Str("component", "feed").Logger(),
	}, nil
}

// Config returns the current config
func (f *Feed) Config() Config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.config
}

// SetConfig replaces the config; a running feed picks it up on its next cycle
func (f *Feed) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = cfg
	return nil
}

// Stats returns the feed counters
func (f *Feed) Stats() Stats {
	return Stats{
		Created:   f.created.Load(),
		Routed:    f.routed.Load(),
		Abandoned: f.abandoned.Load(),
		Errors:    f.failed.Load(),
	}
}

// Run generates leads until ctx is cancelled
func (f *Feed) Run(ctx context.Context) {
	f.logger.Info().Interface("config", f.Config()).Msg("lead feed started")
	defer f.logger.Info().Msg("lead feed stopped")

	for {
		cfg := f.Config()
		if cfg.LeadsPerMin <= 0 {
			// Paused; re-check the config periodically
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
				continue
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.interval(cfg.LeadsPerMin)):
		}

		f.Step(ctx)
	}
}

// Step posts one lead and then maybe routes or abandons a queued one
func (f *Feed) Step(ctx context.Context) {
	cfg := f.Config()

	lead := f.generator.Lead()
	if err := f.api.CreateLead(ctx, lead); err != nil {
		f.fail(err, "failed to create lead")
	} else {
		f.created.Add(1)
		f.logger.Debug().Str("lead_id", lead.ID).Str("company", lead.Company).Msg("lead created")
	}

	if f.chance(cfg.RouteShare) {
		f.routeTop(ctx)
	}
	if f.chance(cfg.AbandonShare) {
		f.abandonOldest(ctx)
	}
}

// Inject posts n leads immediately and returns how many were accepted
func (f *Feed) Inject(ctx context.Context, n int) int {
	injected := 0
	for i := 0; i < n; i++ {
		if err := f.api.CreateLead(ctx, f.generator.Lead()); err != nil {
			f.fail(err, "failed to inject lead")
			continue
		}
		f.created.Add(1)
		injected++
	}
	return injected
}

// routeTop routes the highest priority lead to its best matching agent
func (f *Feed) routeTop(ctx context.Context) {
	leads, err := f.api.Queue(ctx, "priority")
	if err != nil {
		f.fail(err, "failed to load queue")
		return
	}
	for _, scored := range leads {
		if scored.Agent == nil {
			continue
		}
		if err := f.api.RouteLead(ctx, scored.Lead.ID, scored.Agent.Agent.ID); err != nil {
			f.fail(err, "failed to route lead")
			return
		}
		f.routed.Add(1)
		f.logger.Debug().
			Str("lead_id", scored.Lead.ID).
			Str("agent_id", scored.Agent.Agent.ID).
			Str("level", string(scored.Level)).
			Msg("lead routed")
		return
	}
}

// abandonOldest drops the lead that has waited longest
func (f *Feed) abandonOldest(ctx context.Context) {
	leads, err := f.api.Queue(ctx, "waitTime")
	if err != nil {
		f.fail(err, "failed to load queue")
		return
	}
	if len(leads) == 0 {
		return
	}
	oldest := leads[0].Lead
	if err := f.api.AbandonLead(ctx, oldest.ID); err != nil {
		f.fail(err, "failed to abandon lead")
		return
	}
	f.abandoned.Add(1)
	f.logger.Debug().Str("lead_id", oldest.ID).Int("wait_minutes", oldest.WaitMinutes).Msg("lead abandoned")
}

func (f *Feed) fail(err error, msg string) {
	f.failed.Add(1)
	f.logger.Error().Err(err).Msg(msg)
}

func (f *Feed) chance(p float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Float64() < p
}

// interval is the base spacing for the rate with +/-25% jitter
func (f *Feed) interval(perMin float64) time.Duration {
	f.mu.Lock()
	jitter := f.rng.Float64()*0.5 - 0.25
	f.mu.Unlock()

	base := time.Duration(float64(time.Minute) / perMin)
	sleep := base + time.Duration(float64(base)*jitter)
	if sleep < time.Millisecond {
		sleep = time.Millisecond
	}
	return sleep
}
