package handler

import (
	"time"

	"shopcart/internal/application/checkout"
	"shopcart/internal/domain/catalog"
	"shopcart/internal/domain/order"
	"shopcart/internal/domain/pricing"
)

// Money is rendered as fixed two-decimal strings.
type productResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type lineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type invoiceResponse struct {
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	Shipping   string `json:"shipping"`
	GrandTotal string `json:"grand_total"`
}

type cartResponse struct {
	Lines   []lineResponse  `json:"lines"`
	Invoice invoiceResponse `json:"invoice"`
}

type orderResponse struct {
	ID         string         `json:"id"`
	Buyer      string         `json:"buyer"`
	PlacedAt   time.Time      `json:"placed_at"`
	Items      []lineResponse `json:"items"`
	ItemsTotal string         `json:"items_total"`
}

type receiptResponse struct {
	Order   orderResponse   `json:"order"`
	Invoice invoiceResponse `json:"invoice"`
	Summary string          `json:"summary"`
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// quantity defaults to 1 when the field is absent.
func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	Buyer string `json:"buyer"`
}

func toProducts(products []catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{ID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2)})
	}
	return out
}

func toInvoice(inv pricing.Invoice) invoiceResponse {
	return invoiceResponse{
		Subtotal:   inv.Subtotal.StringFixed(2),
		Tax:        inv.Tax.StringFixed(2),
		Shipping:   inv.Shipping.StringFixed(2),
		GrandTotal: inv.GrandTotal.StringFixed(2),
	}
}

func toCart(view checkout.CartView) cartResponse {
	lines := make([]lineResponse, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, lineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return cartResponse{Lines: lines, Invoice: toInvoice(view.Invoice)}
}

func toOrder(o *order.Order) orderResponse {
	items := o.Items()
	lines := make([]lineResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, lineResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}
	return orderResponse{
		ID:         o.ID,
		Buyer:      o.Buyer,
		PlacedAt:   o.PlacedAt,
		Items:      lines,
		ItemsTotal: o.ItemsTotal().StringFixed(2),
	}
}
