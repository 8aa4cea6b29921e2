// Package csvexport renders carts, orders and the ledger as CSV text.
//
// Text fields are always double-quoted with embedded quotes doubled, numeric
// fields are never quoted and carry exactly two decimals. encoding/csv only
// quotes fields that need it, so rows are assembled here directly.
package csvexport

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopcart/internal/domain/order"
	"shopcart/internal/domain/pricing"
)

const (
	CartHeader   = "ID,Name,Qty,Unit,Subtotal"
	OrderHeader  = "OrderID,Buyer,Date,ItemID,ItemName,Qty,Unit,Subtotal"
	LedgerHeader = "OrderID,Buyer,Date,Total"

	// DateLayout renders yyyy-MM-dd HH:mm.
	DateLayout = "2006-01-02 15:04"
)

// Formatter renders CSV. Dates are shown in Location (time.Local when nil).
type Formatter struct {
	Location *time.Location
}

func NewFormatter(loc *time.Location) *Formatter {
	return &Formatter{Location: loc}
}

// Cart renders one row per priced line.
func (f *Formatter) Cart(lines []pricing.Line) string {
	b := &strings.Builder{}
	b.WriteString(CartHeader)
	b.WriteByte('\n')
	for _, l := range lines {
		writeRow(b,
			quote(l.ProductID),
			quote(l.Name),
			strconv.Itoa(l.Quantity),
			money(l.UnitPrice),
			money(l.Subtotal()),
		)
	}
	return b.String()
}

// Order renders one row per item, repeating the order-level fields.
func (f *Formatter) Order(o *order.Order) string {
	b := &strings.Builder{}
	b.WriteString(OrderHeader)
	b.WriteByte('\n')
	if o == nil {
		return b.String()
	}
	date := f.date(o.PlacedAt)
	for _, it := range o.Items() {
		writeRow(b,
			quote(o.ID),
			quote(o.Buyer),
			quote(date),
			quote(it.ProductID),
			quote(it.Name),
			strconv.Itoa(it.Quantity),
			money(it.UnitPrice),
			money(it.Subtotal()),
		)
	}
	return b.String()
}

// Ledger renders one row per order. Total is the items total only; tax and
// shipping are not part of it.
func (f *Formatter) Ledger(orders []*order.Order) string {
	b := &strings.Builder{}
	b.WriteString(LedgerHeader)
	b.WriteByte('\n')
	for _, o := range orders {
		b.WriteString(f.LedgerRow(o))
	}
	return b.String()
}

// LedgerRow renders the ledger line for a single order, newline included.
func (f *Formatter) LedgerRow(o *order.Order) string {
	b := &strings.Builder{}
	writeRow(b, quote(o.ID), quote(o.Buyer), quote(f.date(o.PlacedAt)), money(o.ItemsTotal()))
	return b.String()
}

func (f *Formatter) date(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

func writeRow(b *strings.Builder, fields ...string) {
	b.WriteString(strings.Join(fields, ","))
	b.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
