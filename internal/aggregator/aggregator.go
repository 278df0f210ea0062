package aggregator

import (
	"context"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/dennisdiepolder/monti/leadqueue/internal/websocket"
	"github.com/rs/zerolog"
)

// QueueSource is the read side of the lead store
type QueueSource interface {
	Snapshot() []types.Lead
	ServiceLevel() types.ServiceLevel
}

// QueueRanker ranks a lead snapshot
type QueueRanker interface {
	Rank(leads []types.Lead, q ranker.Query) (ranker.Result, error)
}

// Publisher fans snapshots out to dashboard clients
type Publisher interface {
	Publish(snap websocket.Snapshot) bool
	ClientCount() int
}

// Aggregator periodically snapshots the queue, refreshes queue metrics and
// publishes the snapshot to the hub
type Aggregator struct {
	queue    QueueSource
	ranker   QueueRanker
	hub      Publisher
	interval time.Duration
	logger   zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(queue QueueSource, r QueueRanker, hub Publisher, interval time.Duration, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		queue:    queue,
		ranker:   r,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the broadcast loop
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info().Dur("interval", a.interval).Msg("aggregator started")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("aggregator stopped")
			return

		case now := <-ticker.C:
			a.Cycle(now)
		}
	}
}

// Cycle runs one snapshot, measure and publish pass
func (a *Aggregator) Cycle(now time.Time) {
	m := metrics.Get()
	leads := a.queue.Snapshot()

	rankStart := time.Now()
	res, err := a.ranker.Rank(leads, ranker.Query{Sort: ranker.SortPriority})
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to rank queue")
		return
	}
	m.RecordRank(time.Since(rankStart), len(res.Rejected))
	m.UpdateQueueStats(res.Stats)

	for _, rej := range res.Rejected {
		a.logger.Warn().Str("lead_id", rej.LeadID).Str("error", rej.Error).Msg("lead rejected during ranking")
	}

	if !a.hub.Publish(websocket.Snapshot{
		Timestamp:    now,
		Leads:        leads,
		ServiceLevel: a.queue.ServiceLevel(),
	}) {
		return
	}
	m.RecordBroadcast()

	a.logger.Debug().
		Int("leads", len(leads)).
		Int("sla_at_risk", res.Stats.SLAAtRisk).
		Int("clients", a.hub.ClientCount()).
		Msg("queue snapshot published")
}
