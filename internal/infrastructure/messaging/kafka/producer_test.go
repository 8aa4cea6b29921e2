package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopcart/internal/domain/order"
	"shopcart/pkg/logger"
)

// MockLogger records calls made through logger.Logger.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithContext(ctx context.Context) logger.Logger {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return m
	}
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields ...logger.Field) logger.Logger {
	args := m.Called(fields)
	if args.Get(0) == nil {
		return m
	}
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) Sync() error {
	args := m.Called()
	return args.Error(0)
}

type MockOrderHandler struct {
	mock.Mock
}

func (m *MockOrderHandler) HandleConsumedOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

var placedAt = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

func sampleOrder() *order.Order {
	return order.Restore("ORD1710000000000", "Asha", placedAt, []order.Item{
		{ProductID: "P001", Name: "Wireless Mouse", Quantity: 2, UnitPrice: decimal.NewFromInt(599)},
		{ProductID: "P002", Name: "Mechanical Keyboard", Quantity: 1, UnitPrice: decimal.NewFromInt(1799)},
	})
}

func TestOrderProducer_Publish_EmptyPayload(t *testing.T) {
	producer := &OrderProducer{topic: "test-topic", logger: new(MockLogger), now: time.Now}

	err := producer.publish(context.Background(), "ORD1", []byte{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payload is empty")
}

func TestOrderProducer_PublishOrder_NotConnected(t *testing.T) {
	// client is nil, so publishing fails before reaching a broker
	producer := &OrderProducer{topic: "test-topic", logger: new(MockLogger), now: time.Now}

	err := producer.PublishOrder(context.Background(), sampleOrder())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestOrderProducer_PublishOrder_NilOrder(t *testing.T) {
	producer := &OrderProducer{topic: "test-topic", logger: new(MockLogger), now: time.Now}

	err := producer.PublishOrder(context.Background(), nil)

	assert.Error(t, err)
}

func TestOrderProducer_Close(t *testing.T) {
	mockLog := new(MockLogger)
	producer := &OrderProducer{topic: "test-topic", logger: mockLog}
	mockLog.On("Info", "Closing Kafka producer", mock.Anything).Return()

	err := producer.Close(context.Background())

	assert.NoError(t, err)
	mockLog.AssertExpectations(t)
}

func TestOrderPlaced_RoundTrip(t *testing.T) {
	evt := NewOrderPlaced(sampleOrder(), placedAt.Add(time.Second))
	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "OrderPlaced", raw["type"])
	assert.NotEmpty(t, raw["event_id"])
	assert.Equal(t, "2997", raw["order"].(map[string]any)["items_total"])

	decoded, err := DecodeOrderPlaced(data)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID, decoded.EventID)

	o := decoded.ToOrder()
	assert.Equal(t, "ORD1710000000000", o.ID)
	assert.Equal(t, "Asha", o.Buyer)
	assert.True(t, placedAt.Equal(o.PlacedAt))
	require.Len(t, o.Items(), 2)
	assert.Equal(t, "2997.00", o.ItemsTotal().StringFixed(2))
}

func TestDecodeOrderPlaced_Rejects(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":   `{"event_id":`,
		"wrong type": `{"event_id":"e1","type":"OrderCancelled","order":{"id":"ORD1"}}`,
		"no order":   `{"event_id":"e1","type":"OrderPlaced","order":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOrderPlaced([]byte(payload))
			assert.Error(t, err)
		})
	}
}

type MockMessageReader struct {
	mock.Mock
}

func (m *MockMessageReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	args := m.Called(ctx)
	msg, _ := args.Get(0).(kafkago.Message)
	return msg, args.Error(1)
}

func (m *MockMessageReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageReader) Close() error {
	return m.Called().Error(0)
}

func TestOrderFeedConsumer_Start(t *testing.T) {
	data, err := json.Marshal(NewOrderPlaced(sampleOrder(), placedAt))
	require.NoError(t, err)
	msg := kafkago.Message{Value: data, Offset: 3}

	t.Run("commits after the order is handled", func(t *testing.T) {
		reader := new(MockMessageReader)
		handler := new(MockOrderHandler)
		reader.On("FetchMessage", mock.Anything).Return(msg, nil).Once()
		reader.On("FetchMessage", mock.Anything).Return(kafkago.Message{}, context.Canceled)
		handler.On("HandleConsumedOrder", mock.Anything, mock.Anything).Return(nil)
		reader.On("CommitMessages", mock.Anything, []kafkago.Message{msg}).Return(nil)
		c := &OrderFeedConsumer{reader: reader, handler: handler, logger: new(MockLogger)}

		require.NoError(t, c.Start(context.Background()))
		reader.AssertExpectations(t)
		handler.AssertExpectations(t)
	})

	t.Run("handler failure leaves the offset uncommitted", func(t *testing.T) {
		reader := new(MockMessageReader)
		handler := new(MockOrderHandler)
		reader.On("FetchMessage", mock.Anything).Return(msg, nil).Once()
		handler.On("HandleConsumedOrder", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		c := &OrderFeedConsumer{reader: reader, handler: handler, logger: new(MockLogger)}

		err := c.Start(context.Background())

		assert.ErrorContains(t, err, "disk full")
		reader.AssertNotCalled(t, "CommitMessages", mock.Anything, mock.Anything)
	})

	t.Run("fetch errors other than cancellation stop the consumer", func(t *testing.T) {
		reader := new(MockMessageReader)
		reader.On("FetchMessage", mock.Anything).Return(kafkago.Message{}, errors.New("broker gone"))
		c := &OrderFeedConsumer{reader: reader, handler: new(MockOrderHandler), logger: new(MockLogger)}

		assert.ErrorContains(t, c.Start(context.Background()), "broker gone")
	})
}

func TestOrderFeedConsumer_HandleMessage(t *testing.T) {
	data, err := json.Marshal(NewOrderPlaced(sampleOrder(), placedAt))
	require.NoError(t, err)

	t.Run("passes decoded events to the handler", func(t *testing.T) {
		handler := new(MockOrderHandler)
		handler.On("HandleConsumedOrder", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.ID == "ORD1710000000000" && len(o.Items()) == 2
		})).Return(nil)
		c := &OrderFeedConsumer{handler: handler, logger: new(MockLogger)}

		require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: data}))
		handler.AssertExpectations(t)
	})

	t.Run("skips undecodable messages", func(t *testing.T) {
		handler := new(MockOrderHandler)
		mockLog := new(MockLogger)
		mockLog.On("Warn", "Skipping undecodable order event", mock.Anything).Return()
		c := &OrderFeedConsumer{handler: handler, logger: mockLog}

		require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("garbage"), Offset: 7}))
		handler.AssertNotCalled(t, "HandleConsumedOrder", mock.Anything, mock.Anything)
		mockLog.AssertExpectations(t)
	})

	t.Run("stops on handler errors", func(t *testing.T) {
		handler := new(MockOrderHandler)
		handler.On("HandleConsumedOrder", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		c := &OrderFeedConsumer{handler: handler, logger: new(MockLogger)}

		err := c.handleMessage(context.Background(), kafkago.Message{Value: data})
		assert.ErrorContains(t, err, "disk full")
	})
}
