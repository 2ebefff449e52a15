// Package kafkasink publishes ledger events to a Kafka topic.
//
// Each event becomes one message keyed by its currency ID, so a partition
// sees every event of a currency in ledger order. The value is a JSON
// envelope and the event kind is repeated in a "kind" header.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/xraph/demurrage/event"
	"github.com/xraph/demurrage/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin     = (*Sink)(nil)
	_ plugin.OnEvent    = (*Sink)(nil)
	_ plugin.OnShutdown = (*Sink)(nil)
)

// HeaderKind is the message header carrying the event kind.
const HeaderKind = "kind"

// MessageWriter is the subset of *kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON value of every published message.
type Envelope struct {
	Kind  event.Kind  `json:"kind"`
	Event event.Event `json:"event"`
}

// Sink forwards every ledger event to Kafka.
type Sink struct {
	writer MessageWriter
	logger *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithLogger sets the logger for the sink.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// NewWriter returns a kafka.Writer for topic that balances by least bytes.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

// New creates a Sink writing through w.
func New(w MessageWriter, opts ...Option) *Sink {
	s := &Sink{
		writer: w,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements plugin.Plugin.
func (s *Sink) Name() string { return "kafka-sink" }

// OnEvent implements plugin.OnEvent.
func (s *Sink) OnEvent(ctx context.Context, e event.Event) error {
	msg, err := Message(e)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Warn("kafkasink: publish failed",
			"kind", e.EventKind(),
			"event_id", e.EventID(),
			"error", err,
		)
		return fmt.Errorf("kafkasink: publish %s: %w", e.EventKind(), err)
	}
	return nil
}

// OnShutdown implements plugin.OnShutdown. It flushes and closes the writer.
func (s *Sink) OnShutdown(_ context.Context) error {
	return s.writer.Close()
}

// Message encodes e as a Kafka message.
func Message(e event.Event) (kafka.Message, error) {
	value, err := json.Marshal(Envelope{Kind: e.EventKind(), Event: e})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafkasink: encode %s: %w", e.EventKind(), err)
	}
	return kafka.Message{
		Key:   []byte(e.EventCurrency().String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderKind, Value: []byte(e.EventKind())},
		},
	}, nil
}
