package repository

import (
	"context"
	"errors"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/order"
)

// ErrSnapshotCorrupt marks a snapshot that exists but cannot be decoded.
var ErrSnapshotCorrupt = errors.New("snapshot is corrupt")

// CartRepository persists the cart as one whole snapshot.
//
// LoadCart never returns a nil cart: a missing snapshot yields an empty cart
// and a nil error, an unreadable one yields an empty cart and the error.
type CartRepository interface {
	SaveCart(ctx context.Context, lines []cart.LineItem) error
	LoadCart(ctx context.Context) ([]cart.LineItem, error)
}

// LedgerRepository persists the order ledger as one whole snapshot.
type LedgerRepository interface {
	SaveLedger(ctx context.Context, orders []*order.Order) error
	// LoadLedger follows the same degrade-to-empty contract as LoadCart.
	LoadLedger(ctx context.Context) ([]*order.Order, error)
	// AppendOrder loads the stored ledger, appends o and rewrites the whole
	// snapshot. An unreadable stored ledger is replaced by one holding only o;
	// the returned bool reports that reset. The returned slice is what was written.
	AppendOrder(ctx context.Context, o *order.Order) ([]*order.Order, bool, error)
}
