package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaDispatcher publishes outbox events to the notification topic. Events
// are keyed by decision ID so per-decision ordering survives partitioning.
type KafkaDispatcher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaDispatcher connects to the brokers and ensures the topic exists.
func NewKafkaDispatcher(ctx context.Context, brokers []string, topic string) (*KafkaDispatcher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("list kafka topics: %w", err)
	}
	if !topics.Has(topic) {
		if _, err := adm.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
			client.Close()
			return nil, fmt.Errorf("create kafka topic %s: %w", topic, err)
		}
	}
	return &KafkaDispatcher{client: client, topic: topic}, nil
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, events []Event) error {
	records := make([]*kgo.Record, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: d.topic,
			Key:   []byte(e.DecisionID.String()),
			Value: value,
		})
	}
	if err := d.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce notification events: %w", err)
	}
	return nil
}

func (d *KafkaDispatcher) Close() {
	d.client.Close()
}
