package file

import (
	"context"
	"fmt"
	"time"

	"shopcart/internal/domain/order"
	"shopcart/internal/domain/repository"
	"shopcart/internal/infrastructure/encoding/avro"
)

// LedgerRepository stores every placed order in one Avro container file that
// is rewritten in full on each append.
type LedgerRepository struct {
	path string
	enc  *avro.Encoder
	now  func() time.Time
}

func NewLedgerRepository(path string) (*LedgerRepository, error) {
	enc, err := avro.NewEncoder(avro.LedgerSnapshotSchema)
	if err != nil {
		return nil, err
	}
	return &LedgerRepository{path: path, enc: enc, now: time.Now}, nil
}

func (r *LedgerRepository) Path() string { return r.path }

func (r *LedgerRepository) SaveLedger(ctx context.Context, orders []*order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := r.enc.Marshal(avro.LedgerToNative(orders, r.now()))
	if err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}
	return writeAtomic(r.path, data)
}

func (r *LedgerRepository) LoadLedger(ctx context.Context) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return []*order.Order{}, err
	}
	data, ok, err := readSnapshot(r.path)
	if err != nil {
		return []*order.Order{}, err
	}
	if !ok {
		return []*order.Order{}, nil
	}
	native, err := r.enc.Unmarshal(data)
	if err != nil {
		return []*order.Order{}, fmt.Errorf("%w: %v", repository.ErrSnapshotCorrupt, err)
	}
	orders, err := avro.LedgerFromNative(native)
	if err != nil {
		return []*order.Order{}, fmt.Errorf("%w: %v", repository.ErrSnapshotCorrupt, err)
	}
	return orders, nil
}

func (r *LedgerRepository) AppendOrder(ctx context.Context, o *order.Order) ([]*order.Order, bool, error) {
	existing, loadErr := r.LoadLedger(ctx)
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	reset := loadErr != nil
	if reset {
		existing = nil
	}

	orders := make([]*order.Order, 0, len(existing)+1)
	orders = append(orders, existing...)
	orders = append(orders, o)

	if err := r.SaveLedger(ctx, orders); err != nil {
		return nil, reset, err
	}
	return orders, reset, nil
}

var _ repository.LedgerRepository = (*LedgerRepository)(nil)
