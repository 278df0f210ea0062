package ticker

import (
	"context"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/metrics"
	"github.com/rs/zerolog"
)

// Advancer moves simulated queue time forward by one tick
type Advancer interface {
	AdvanceTime() int
}

// Ticker periodically advances every queued lead's wait
type Ticker struct {
	queue    Advancer
	interval time.Duration
	logger   zerolog.Logger
}

// NewTicker creates a new Ticker
func NewTicker(queue Advancer, interval time.Duration, logger zerolog.Logger) *Ticker {
	return &Ticker{
		queue:    queue,
		interval: interval,
		logger:   logger,
	}
}

// Start advances the queue on every tick until ctx is cancelled
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	m := metrics.Get()
	t.logger.Info().Dur("interval", t.interval).Msg("ticker started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("ticker stopped")
			return

		case <-ticker.C:
			advanced := t.queue.AdvanceTime()
			m.RecordTick()
			t.logger.Debug().
				Int("leads", advanced).
				Msg("advanced queue wait times")
		}
	}
}
