package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Config holds the outcome topic settings
type Config struct {
	Brokers []string
	Topic   string
}

// LoadConfig reads KAFKA_BROKERS (comma separated) and KAFKA_OUTCOMES_TOPIC.
// No brokers means publishing is disabled.
func LoadConfig() Config {
	cfg := Config{Topic: "leadqueue-outcomes"}
	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.Brokers = append(cfg.Brokers, broker)
		}
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_OUTCOMES_TOPIC")); v != "" {
		cfg.Topic = v
	}
	return cfg
}

// Enabled reports whether any broker is configured
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes lead outcomes to Kafka
type Producer struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg Config, logger zerolog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}, cfg.Topic, logger)
}

func newProducer(w messageWriter, topic string, logger zerolog.Logger) *Producer {
	return &Producer{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("component", "kafka").Logger(),
	}
}

// RecordOutcome publishes one outcome keyed by lead ID
func (p *Producer) RecordOutcome(ctx context.Context, outcome types.LeadOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal lead outcome: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(outcome.LeadID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "outcome", Value: []byte(outcome.Kind)},
		},
		Time: outcome.Timestamp,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish lead outcome: %w", err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("lead_id", outcome.LeadID).
		Str("outcome", string(outcome.Kind)).
		Msg("sent outcome to Kafka")
	return nil
}

// Close closes the Kafka writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
