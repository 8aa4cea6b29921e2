package kafka

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"shopcart/internal/config"
	"shopcart/internal/domain/order"
	"shopcart/pkg/logger"
)

// OrderHandler receives the order carried by each OrderPlaced event.
type OrderHandler interface {
	HandleConsumedOrder(ctx context.Context, o *order.Order) error
}

// messageReader is the part of *kafkago.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type OrderFeedConsumer struct {
	reader  messageReader
	handler OrderHandler
	logger  logger.Logger
}

func NewOrderFeedConsumer(cfg config.KafkaConfig, handler OrderHandler, log logger.Logger) *OrderFeedConsumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.ConsumerGroup,
		Topic:    cfg.OrderTopic,
		MinBytes: 1e3,
		MaxBytes: 1e6,
	})

	return &OrderFeedConsumer{
		reader:  reader,
		handler: handler,
		logger:  log,
	}
}

// Start reads until ctx is cancelled. Undecodable messages are logged and
// skipped; a handler error stops the consumer without committing, so the
// order is redelivered on the next start.
func (c *OrderFeedConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if isDone(err) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}
		if err := c.handleMessage(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if isDone(err) {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func isDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *OrderFeedConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	evt, err := DecodeOrderPlaced(msg.Value)
	if err != nil {
		c.logger.Warn("Skipping undecodable order event",
			logger.Int64("offset", msg.Offset),
			logger.Int("partition", msg.Partition),
			logger.Error(err),
		)
		return nil
	}
	if err := c.handler.HandleConsumedOrder(ctx, evt.ToOrder()); err != nil {
		return fmt.Errorf("handle order %s: %w", evt.Order.ID, err)
	}
	return nil
}

func (c *OrderFeedConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
