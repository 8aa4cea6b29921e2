package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"shopcart/internal/config"
	"shopcart/internal/domain/order"
	"shopcart/pkg/logger"
)

// OrderProducer publishes OrderPlaced events keyed by order id, so every event
// for one order lands on the same partition.
type OrderProducer struct {
	client *kgo.Client
	topic  string
	logger logger.Logger
	now    func() time.Time
}

func NewOrderProducer(cfg config.KafkaConfig, log logger.Logger) (*OrderProducer, error) {
	log.Info("Connecting Kafka producer",
		logger.Any("brokers", cfg.Brokers),
		logger.String("topic", cfg.OrderTopic),
	)

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.OrderTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.DisableIdempotentWrite(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	// connection is only tested on first publish
	return &OrderProducer{
		client: client,
		topic:  cfg.OrderTopic,
		logger: log,
		now:    time.Now,
	}, nil
}

func (p *OrderProducer) PublishOrder(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	evt := NewOrderPlaced(o, p.now())
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	if err := p.publish(ctx, o.ID, payload); err != nil {
		return err
	}
	p.logger.Debug("Order event published",
		logger.String("order_id", o.ID),
		logger.String("event_id", evt.EventID),
	)
	return nil
}

func (p *OrderProducer) publish(ctx context.Context, key string, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}
	if p.client == nil {
		return fmt.Errorf("kafka producer is not connected")
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(key),
		Value:     payload,
		Timestamp: p.now().UTC(),
	}

	// one record, so the first error is the only one
	results := p.client.ProduceSync(ctx, rec)
	if err := results.FirstErr(); err != nil {
		p.logger.Error("Failed to publish to Kafka",
			logger.String("topic", p.topic),
			logger.Int("payload_bytes", len(payload)),
			logger.Error(err),
		)
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}
	return nil
}

func (p *OrderProducer) Close(ctx context.Context) error {
	p.logger.Info("Closing Kafka producer", logger.String("topic", p.topic))
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
