package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher publishes exercise lifecycle events for downstream
// consumers (course platform sync, authoring analytics).
type EventPublisher interface {
	PublishExerciseEvent(ctx context.Context, event *ExerciseEvent) error
	Close() error
}

// KafkaEventPublisher sends exercise events to a Kafka topic via Watermill
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds the Kafka connection settings
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

// PublishExerciseEvent marshals the event and publishes it with routing
// metadata. The event ID doubles as the message UUID.
func (p *KafkaEventPublisher) PublishExerciseEvent(ctx context.Context, event *ExerciseEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal exercise event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish exercise event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish exercise event: %w", err)
	}

	p.logger.Info("Published exercise event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topicName)

	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for tests and for running
// without a broker
type MockEventPublisher struct {
	mu     sync.Mutex
	events []ExerciseEvent
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) PublishExerciseEvent(ctx context.Context, event *ExerciseEvent) error {
	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	m.logger.Info("Mock: Published exercise event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of every recorded event in publish order
func (m *MockEventPublisher) GetPublishedEvents() []ExerciseEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ExerciseEvent, len(m.events))
	copy(out, m.events)
	return out
}

// ClearEvents drops all recorded events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
