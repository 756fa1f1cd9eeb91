package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/i474232898/zip-weather/internal/weather"
)

const (
	// maxBufferedRecords caps records waiting for the broker. Past it,
	// Publish drops events instead of waiting.
	maxBufferedRecords = 1000
	deliveryTimeout    = 30 * time.Second
)

// KafkaPublisher sends fetch events to a topic, keyed by ZIP code.
type KafkaPublisher struct {
	topic  string
	client *kgo.Client
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
		kgo.MaxBufferedRecords(maxBufferedRecords),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	log.Printf("events: kafka producer initialized for topic %s", topic)
	return &KafkaPublisher{topic: topic, client: client}, nil
}

// Publish enqueues the event and returns immediately, even when the broker
// is unreachable and the buffer is full. Dropped and failed events are
// logged.
func (p *KafkaPublisher) Publish(event weather.FetchEvent) {
	record, err := newRecord(p.topic, event)
	if err != nil {
		log.Printf("events: encode %s: %v", event.Zip, err)
		return
	}

	p.client.TryProduce(context.Background(), record, func(r *kgo.Record, err error) {
		if err != nil {
			log.Printf("events: publish %s failed: %v", string(r.Key), err)
		}
	})
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		log.Printf("events: flush: %v", err)
	}
	p.client.Close()
}

func newRecord(topic string, event weather.FetchEvent) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.Zip),
		Value: value,
	}, nil
}
