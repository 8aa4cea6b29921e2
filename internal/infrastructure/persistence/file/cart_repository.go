package file

import (
	"context"
	"fmt"
	"time"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/repository"
	"shopcart/internal/infrastructure/encoding/avro"
)

// CartRepository stores the cart as a single Avro container file.
type CartRepository struct {
	path string
	enc  *avro.Encoder
	now  func() time.Time
}

func NewCartRepository(path string) (*CartRepository, error) {
	enc, err := avro.NewEncoder(avro.CartSnapshotSchema)
	if err != nil {
		return nil, err
	}
	return &CartRepository{path: path, enc: enc, now: time.Now}, nil
}

func (r *CartRepository) Path() string { return r.path }

func (r *CartRepository) SaveCart(ctx context.Context, lines []cart.LineItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := r.enc.Marshal(avro.CartToNative(lines, r.now()))
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	return writeAtomic(r.path, data)
}

func (r *CartRepository) LoadCart(ctx context.Context) ([]cart.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return []cart.LineItem{}, err
	}
	data, ok, err := readSnapshot(r.path)
	if err != nil {
		return []cart.LineItem{}, err
	}
	if !ok {
		return []cart.LineItem{}, nil
	}
	native, err := r.enc.Unmarshal(data)
	if err != nil {
		return []cart.LineItem{}, fmt.Errorf("%w: %v", repository.ErrSnapshotCorrupt, err)
	}
	lines, err := avro.CartFromNative(native)
	if err != nil {
		return []cart.LineItem{}, fmt.Errorf("%w: %v", repository.ErrSnapshotCorrupt, err)
	}
	return lines, nil
}

var _ repository.CartRepository = (*CartRepository)(nil)
