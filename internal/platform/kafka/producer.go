package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"trustgraph/internal/platform/config"
	"trustgraph/pkg/platform/audit"
)

// Producer mirrors audit events to a Kafka topic. It implements audit.Sink.
// The store-local log remains the source of truth; the topic feeds downstream
// compliance consumers.
type Producer struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON structure published per event. Keys are stable for
// consumer compatibility.
type payload struct {
	Store     string `json:"store"`
	EventID   uint64 `json:"event_id"`
	Actor     string `json:"actor"`
	EntityKey string `json:"entity_key"`
	EventType string `json:"event_type"`
	Timestamp uint64 `json:"timestamp"`
}

// New connects to the brokers and ensures the audit topic exists.
// Returns nil if no brokers are configured (Kafka mirroring disabled).
func New(ctx context.Context, cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, cfg.Topic); err != nil {
		// Already-existing topics are fine; anything else is a real failure.
		if resp, lookupErr := adm.ListTopics(ctx, cfg.Topic); lookupErr != nil || !resp.Has(cfg.Topic) {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic %q: %w", cfg.Topic, err)
		}
	}

	return &Producer{client: client, topic: cfg.Topic}, nil
}

// Publish sends one audit event, keyed by store name so per-store ordering
// survives partitioning.
func (p *Producer) Publish(ctx context.Context, store string, event audit.Event) error {
	body, err := json.Marshal(payload{
		Store:     store,
		EventID:   event.ID,
		Actor:     string(event.Actor),
		EntityKey: event.EntityKey,
		EventType: string(event.Type),
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(store),
		Value: body,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
