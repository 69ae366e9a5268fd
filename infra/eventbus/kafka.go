package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/tokenx/pkg/domain/common"
	"github.com/amirasaad/tokenx/pkg/eventbus"
	"github.com/segmentio/kafka-go"
)

// envelope is the wire format for published events.
type envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// KafkaPublisher forwards domain events to a Kafka topic. It is attached to
// an in-process bus via Forward, so services stay unaware of the transport.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
// brokers is a comma-separated list (e.g. "localhost:9092,localhost:9093").
func NewKafkaPublisher(brokers, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(splitBrokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, logger: logger.With("bus", "kafka")}
}

// Forward subscribes the publisher to the given event types on bus.
func (p *KafkaPublisher) Forward(bus eventbus.Bus, eventTypes ...string) {
	for _, et := range eventTypes {
		bus.Subscribe(et, p.publish)
	}
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, event common.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", "type", event.Type(), "error", err)
		return
	}
	data, err := json.Marshal(envelope{
		Type:       event.Type(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Error("failed to marshal envelope", "type", event.Type(), "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.Type()),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event", "type", event.Type(), "error", err)
	}
}

func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if b := strings.TrimSpace(part); b != "" {
			out = append(out, b)
		}
	}
	return out
}
