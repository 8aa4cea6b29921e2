// Package pricing derives invoices from priced cart lines. Everything here is
// pure and deterministic.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/catalog"
)

// Line is a cart line joined with its catalog product.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Policy holds the tax and shipping parameters.
type Policy struct {
	TaxRate          decimal.Decimal
	FreeShippingOver decimal.Decimal
	ShippingFee      decimal.Decimal
}

// DefaultPolicy is 18% tax and a flat 99.00 shipping fee for subtotals of
// 2000.00 or less.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate:          decimal.RequireFromString("0.18"),
		FreeShippingOver: decimal.NewFromInt(2000),
		ShippingFee:      decimal.NewFromInt(99),
	}
}

type Invoice struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Compute returns the invoice for lines. Shipping is waived only when the
// subtotal is strictly greater than the threshold.
func (p Policy) Compute(lines []Line) Invoice {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	tax := Round2(subtotal.Mul(p.TaxRate))
	shipping := p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingOver) {
		shipping = decimal.Zero
	}
	return Invoice{
		Subtotal:   subtotal,
		Tax:        tax,
		Shipping:   shipping,
		GrandTotal: Round2(subtotal.Add(tax).Add(shipping)),
	}
}

// Join resolves every cart line against cat, keeping cart order.
func Join(cat catalog.Catalog, items []cart.LineItem) ([]Line, error) {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		p, ok := cat.Lookup(it.ProductID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, it.ProductID)
		}
		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
	}
	return lines, nil
}

// Summary renders the order confirmation text for lines and inv.
func (inv Invoice) Summary(lines []Line, rate decimal.Decimal) string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "Order summary:")
	for _, l := range lines {
		fmt.Fprintf(b, "%s x %d = %s\n", l.Name, l.Quantity, l.Subtotal().StringFixed(2))
	}
	fmt.Fprintln(b)
	fmt.Fprintf(b, "Subtotal: %s\n", inv.Subtotal.StringFixed(2))
	fmt.Fprintf(b, "Tax (%s%%): %s\n", rate.Shift(2).String(), inv.Tax.StringFixed(2))
	fmt.Fprintf(b, "Shipping: %s\n", inv.Shipping.StringFixed(2))
	fmt.Fprintf(b, "Grand Total: %s\n", inv.GrandTotal.StringFixed(2))
	return b.String()
}
