package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/linkforge/profile-hub/internal/config"
)

const TopicProfileEvents = "profile.events"

const (
	ProfileEventTypeSubEntityAdded   = "sub_entity.added"
	ProfileEventTypeSubEntityUpdated = "sub_entity.updated"
	ProfileEventTypePinsChanged      = "testimonials.pinned_changed"
)

type ProfileEventPayload struct {
	EventType  string `json:"event_type"`
	Username   string `json:"username"`
	Collection string `json:"collection,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	// About carries the referenced profile when the sub-entity is a
	// testimonial, so consumers can maintain the reverse index.
	About string `json:"about,omitempty"`
}

// Publisher is what the use cases depend on; the Kafka client satisfies it.
type Publisher interface {
	PublishProfileEvent(ctx context.Context, payload ProfileEventPayload) error
}

type KafkaProducerClient struct {
	ProfileEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	profileWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicProfileEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		ProfileEventsWriter: profileWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishProfileEvent(ctx context.Context, payload ProfileEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal profile event: %w", err)
	}

	// Keyed by username so all changes to one profile stay ordered
	// within a partition.
	return c.ProfileEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.Username),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		c.ProfileEventsWriter.Close()
	}
}
