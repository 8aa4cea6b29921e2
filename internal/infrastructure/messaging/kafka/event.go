package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopcart/internal/domain/order"
)

const EventOrderPlaced = "OrderPlaced"

// OrderPlaced is the JSON envelope published for every recorded order.
type OrderPlaced struct {
	EventID    string       `json:"event_id"`
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      OrderPayload `json:"order"`
}

type OrderPayload struct {
	ID         string          `json:"id"`
	Buyer      string          `json:"buyer"`
	PlacedAt   time.Time       `json:"placed_at"`
	Items      []ItemPayload   `json:"items"`
	ItemsTotal decimal.Decimal `json:"items_total"`
}

type ItemPayload struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func NewOrderPlaced(o *order.Order, occurredAt time.Time) OrderPlaced {
	items := o.Items()
	payload := OrderPayload{
		ID:         o.ID,
		Buyer:      o.Buyer,
		PlacedAt:   o.PlacedAt,
		Items:      make([]ItemPayload, 0, len(items)),
		ItemsTotal: o.ItemsTotal(),
	}
	for _, it := range items {
		payload.Items = append(payload.Items, ItemPayload{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return OrderPlaced{
		EventID:    uuid.NewString(),
		Type:       EventOrderPlaced,
		OccurredAt: occurredAt.UTC(),
		Order:      payload,
	}
}

// DecodeOrderPlaced parses an envelope and rejects other event types.
func DecodeOrderPlaced(data []byte) (*OrderPlaced, error) {
	var evt OrderPlaced
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("decode order event: %w", err)
	}
	if evt.Type != EventOrderPlaced {
		return nil, fmt.Errorf("unexpected event type %q", evt.Type)
	}
	if evt.Order.ID == "" {
		return nil, fmt.Errorf("order event %s has no order id", evt.EventID)
	}
	return &evt, nil
}

// ToOrder rebuilds the domain order carried by the event.
func (e *OrderPlaced) ToOrder() *order.Order {
	items := make([]order.Item, 0, len(e.Order.Items))
	for _, it := range e.Order.Items {
		items = append(items, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return order.Restore(e.Order.ID, e.Order.Buyer, e.Order.PlacedAt, items)
}
