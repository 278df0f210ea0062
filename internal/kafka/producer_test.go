package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_OUTCOMES_TOPIC", "")
	cfg := LoadConfig()
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "leadqueue-outcomes", cfg.Topic)

	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_OUTCOMES_TOPIC", "crm-outcomes")
	cfg = LoadConfig()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, "crm-outcomes", cfg.Topic)
}

func TestRecordOutcomePublishesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "outcomes", zerolog.Nop())

	ts := time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)
	err := p.RecordOutcome(context.Background(), types.LeadOutcome{
		DateKey:     "2026-10-14",
		LeadID:      "lead-7",
		Kind:        types.OutcomeAbandoned,
		WaitMinutes: 33,
		Timestamp:   ts,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "lead-7", string(msg.Key))
	assert.Equal(t, ts, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "abandoned", string(msg.Headers[0].Value))

	var decoded types.LeadOutcome
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 33, decoded.WaitMinutes)
	assert.Equal(t, types.OutcomeAbandoned, decoded.Kind)
}

func TestRecordOutcomeWrapsWriterError(t *testing.T) {
	sentinel := errors.New("broker unreachable")
	p := newProducer(&fakeWriter{err: sentinel}, "outcomes", zerolog.Nop())

	err := p.RecordOutcome(context.Background(), types.LeadOutcome{LeadID: "x"})
	assert.ErrorIs(t, err, sentinel)
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w, "outcomes", zerolog.Nop()).Close())
	assert.True(t, w.closed)
}
