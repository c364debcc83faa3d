// Package kafka provides the Kafka-backed version-change publisher.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"chronicle/internal/events"
	"chronicle/internal/platform/config"
)

// Producer publishes version-change events to a Kafka topic, keyed by
// natural key so all versions of one entity land in one partition.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the brokers and ensures the topic exists.
// Returns nil if no brokers are configured (publishing disabled).
func NewProducer(ctx context.Context, cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ClientID("chronicle"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, cfg.Topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Producer{client: client, topic: cfg.Topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, resp := range resps.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// PublishVersionChange produces one JSON record synchronously. The append
// transaction has already committed when this runs; a delivery failure is
// surfaced so the caller can decide whether to re-drive the load.
func (p *Producer) PublishVersionChange(ctx context.Context, change events.VersionChange) error {
	value, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal version change: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(change.NaturalKey),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce version change: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *Producer) Close() {
	p.client.Close()
}

var _ events.Publisher = (*Producer)(nil)
