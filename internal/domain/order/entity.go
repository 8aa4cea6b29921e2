package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopcart/internal/domain/pricing"
)

// Item is a line captured at checkout time, including the product values.
type Item struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is immutable once created. Items is never shared with a cart.
type Order struct {
	ID       string
	Buyer    string
	PlacedAt time.Time
	items    []Item
}

// NewOrder trims buyer and deep-copies lines into the order.
func NewOrder(id, buyer string, placedAt time.Time, lines []pricing.Line) (*Order, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	buyer = strings.TrimSpace(buyer)
	if buyer == "" {
		return nil, ErrMissingBuyer
	}
	if len(lines) == 0 {
		return nil, ErrNoItems
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	return &Order{ID: id, Buyer: buyer, PlacedAt: placedAt, items: items}, nil
}

// Restore rebuilds an order read back from a snapshot without validation.
func Restore(id, buyer string, placedAt time.Time, items []Item) *Order {
	cp := make([]Item, len(items))
	copy(cp, items)
	return &Order{ID: id, Buyer: buyer, PlacedAt: placedAt, items: cp}
}

// Items returns a copy of the captured items.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// ItemsTotal is the sum of price x quantity. It excludes tax and shipping.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.items {
		total = total.Add(it.Subtotal())
	}
	return total
}
