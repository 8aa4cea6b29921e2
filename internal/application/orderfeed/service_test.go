package orderfeed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopcart/internal/domain/order"
	"shopcart/internal/infrastructure/encoding/csvexport"
	"shopcart/pkg/logger"
)

// MockLedgerRepository mocks repository.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) SaveLedger(ctx context.Context, orders []*order.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockLedgerRepository) LoadLedger(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockLedgerRepository) AppendOrder(ctx context.Context, o *order.Order) ([]*order.Order, bool, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Bool(1), args.Error(2)
}

func newOrder(id string) *order.Order {
	return order.Restore(id, "Asha", time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC), []order.Item{
		{ProductID: "P001", Name: "Wireless Mouse", Quantity: 2, UnitPrice: decimal.NewFromInt(599)},
	})
}

func TestService_HandleConsumedOrder(t *testing.T) {
	// Arrange
	repo := new(MockLedgerRepository)
	out := &bytes.Buffer{}
	svc := NewService(repo, csvexport.NewFormatter(time.UTC), out, logger.NewNop())
	o := newOrder("ORD1")
	repo.On("AppendOrder", mock.Anything, o).Return([]*order.Order{o}, false, nil)

	// Act
	err := svc.HandleConsumedOrder(context.Background(), o)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "OrderID,Buyer,Date,Total\n\"ORD1\",\"Asha\",\"2024-03-09 14:05\",1198.00\n", out.String())
	repo.AssertExpectations(t)
}

func TestService_HandleConsumedOrder_SkipsRedelivery(t *testing.T) {
	// Arrange
	repo := new(MockLedgerRepository)
	out := &bytes.Buffer{}
	svc := NewService(repo, csvexport.NewFormatter(time.UTC), out, logger.NewNop())
	known := newOrder("ORD1")
	repo.On("LoadLedger", mock.Anything).Return([]*order.Order{known}, nil)

	n, err := svc.Prime(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Act
	err = svc.HandleConsumedOrder(context.Background(), newOrder("ORD1"))

	// Assert
	require.NoError(t, err)
	assert.Empty(t, out.String())
	repo.AssertNotCalled(t, "AppendOrder", mock.Anything, mock.Anything)
}

func TestService_HandleConsumedOrder_ReplicaFailure(t *testing.T) {
	// Arrange
	repo := new(MockLedgerRepository)
	out := &bytes.Buffer{}
	svc := NewService(repo, csvexport.NewFormatter(time.UTC), out, logger.NewNop())
	repo.On("AppendOrder", mock.Anything, mock.Anything).Return(nil, false, errors.New("disk full"))

	// Act
	err := svc.HandleConsumedOrder(context.Background(), newOrder("ORD2"))

	// Assert
	assert.ErrorContains(t, err, "save order")
	assert.Empty(t, out.String())

	// a failed order is not marked seen and is retried on redelivery
	repo.ExpectedCalls = nil
	repo.On("AppendOrder", mock.Anything, mock.Anything).Return(nil, false, nil)
	require.NoError(t, svc.HandleConsumedOrder(context.Background(), newOrder("ORD2")))
	assert.Contains(t, out.String(), `"ORD2"`)
}

func TestService_WithoutReplica(t *testing.T) {
	out := &bytes.Buffer{}
	svc := NewService(nil, csvexport.NewFormatter(time.UTC), out, logger.NewNop())

	n, err := svc.Prime(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, svc.HandleConsumedOrder(context.Background(), newOrder("ORD1")))
	require.NoError(t, svc.HandleConsumedOrder(context.Background(), newOrder("ORD2")))
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("OrderID,Buyer")))
	assert.Error(t, svc.HandleConsumedOrder(context.Background(), nil))
}
