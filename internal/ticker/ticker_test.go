package ticker

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/leadqueue"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

type countingAdvancer struct {
	calls atomic.Int32
}

func (c *countingAdvancer) AdvanceTime() int {
	c.calls.Add(1)
	return 0
}

func TestNewTicker(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	queue := &countingAdvancer{}
	ticker := NewTicker(queue, 1*time.Second, logger)

	if ticker == nil {
		t.Fatal("expected ticker to be created")
	}

	if ticker.queue != queue {
		t.Error("ticker queue not set correctly")
	}

	if ticker.interval != 1*time.Second {
		t.Errorf("expected interval 1s, got %v", ticker.interval)
	}
}

func TestTickerStart(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	queue := &countingAdvancer{}

	// Create ticker with short interval for testing
	ticker := NewTicker(queue, 100*time.Millisecond, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan bool)
	go func() {
		ticker.Start(ctx)
		done <- true
	}()

	<-ctx.Done()

	select {
	case <-done:
		// Ticker stopped as expected
	case <-time.After(1 * time.Second):
		t.Error("ticker did not stop after context cancel")
	}

	if queue.calls.Load() == 0 {
		t.Error("expected at least one tick")
	}
}

func TestTickerAdvancesStore(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	store := leadqueue.NewStore(1, logger)
	if _, err := store.Add(types.Lead{ID: "lead-1", WaitMinutes: 5}); err != nil {
		t.Fatalf("add: %v", err)
	}

	ticker := NewTicker(store, 50*time.Millisecond, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 275*time.Millisecond)
	defer cancel()

	done := make(chan bool)
	go func() {
		ticker.Start(ctx)
		done <- true
	}()
	<-done

	lead, ok := store.Get("lead-1")
	if !ok {
		t.Fatal("expected lead to remain queued")
	}
	if lead.WaitMinutes <= 5 {
		t.Errorf("expected wait to grow past 5, got %d", lead.WaitMinutes)
	}
}

func TestTickerStopsOnContextCancel(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	queue := &countingAdvancer{}

	ticker := NewTicker(queue, 100*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		ticker.Start(ctx)
		done <- true
	}()

	// Let it run for a bit
	time.Sleep(200 * time.Millisecond)

	cancel()

	select {
	case <-done:
		// Success - ticker stopped
	case <-time.After(1 * time.Second):
		t.Error("ticker did not stop within timeout after context cancel")
	}

	stopped := queue.calls.Load()
	time.Sleep(150 * time.Millisecond)
	if queue.calls.Load() != stopped {
		t.Error("ticker kept advancing after cancel")
	}
}
