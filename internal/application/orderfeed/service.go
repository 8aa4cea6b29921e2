// Package orderfeed follows the stream of placed orders. Each new order is
// written out as a ledger CSV row and, when a replica is configured, appended
// to a ledger snapshot of its own.
package orderfeed

import (
	"context"
	"fmt"
	"io"
	"sync"

	"shopcart/internal/domain/order"
	"shopcart/internal/domain/repository"
	"shopcart/internal/infrastructure/encoding/csvexport"
	"shopcart/pkg/logger"
)

type Service struct {
	mu      sync.Mutex
	replica repository.LedgerRepository
	csv     *csvexport.Formatter
	out     io.Writer
	log     logger.Logger
	seen    map[string]struct{}
	headed  bool
}

// NewService writes rows to out. replica may be nil.
func NewService(replica repository.LedgerRepository, csv *csvexport.Formatter, out io.Writer, log logger.Logger) *Service {
	return &Service{
		replica: replica,
		csv:     csv,
		out:     out,
		log:     log,
		seen:    make(map[string]struct{}),
	}
}

// Prime marks the orders already in the replica as seen, so a redelivered
// event is not recorded twice. It returns how many orders were found.
func (s *Service) Prime(ctx context.Context) (int, error) {
	if s.replica == nil {
		return 0, nil
	}
	orders, err := s.replica.LoadLedger(ctx)
	if err != nil {
		return 0, fmt.Errorf("load replica ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		s.seen[o.ID] = struct{}{}
	}
	return len(orders), nil
}

// HandleConsumedOrder records o unless it was seen before.
func (s *Service) HandleConsumedOrder(ctx context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[o.ID]; dup {
		s.log.Debug("Skipping order already recorded", logger.String("order_id", o.ID))
		return nil
	}

	if s.replica != nil {
		_, reset, err := s.replica.AppendOrder(ctx, o)
		if err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		if reset {
			s.log.Warn("Replica ledger was unreadable and has been replaced", logger.String("order_id", o.ID))
		}
	}

	if !s.headed {
		if _, err := io.WriteString(s.out, csvexport.LedgerHeader+"\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		s.headed = true
	}
	if _, err := io.WriteString(s.out, s.csv.LedgerRow(o)); err != nil {
		return fmt.Errorf("write order row: %w", err)
	}

	s.seen[o.ID] = struct{}{}
	s.log.Info("Order received",
		logger.String("order_id", o.ID),
		logger.String("buyer", o.Buyer),
		logger.String("items_total", o.ItemsTotal().StringFixed(2)),
	)
	return nil
}
