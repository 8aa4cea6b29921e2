package avro

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/order"
)

// CartToNative maps cart lines to the CartSnapshot record.
func CartToNative(lines []cart.LineItem, savedAt time.Time) map[string]interface{} {
	items := make([]interface{}, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]interface{}{
			"product_id": l.ProductID,
			"quantity":   int32(l.Quantity),
		})
	}
	return map[string]interface{}{
		"version":  int32(SnapshotVersion),
		"saved_at": savedAt.UnixMilli(),
		"lines":    items,
	}
}

// CartFromNative maps a decoded CartSnapshot record back to cart lines.
func CartFromNative(native map[string]interface{}) ([]cart.LineItem, error) {
	if err := checkVersion(native); err != nil {
		return nil, err
	}
	raw, err := array(native, "lines")
	if err != nil {
		return nil, err
	}
	lines := make([]cart.LineItem, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("line %d: unexpected type %T", i, r)
		}
		id, err := str(m, "product_id")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		qty, err := int32Field(m, "quantity")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, cart.LineItem{ProductID: id, Quantity: int(qty)})
	}
	return lines, nil
}

// LedgerToNative maps the orders to the LedgerSnapshot record.
func LedgerToNative(orders []*order.Order, savedAt time.Time) map[string]interface{} {
	out := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		items := o.Items()
		nativeItems := make([]interface{}, 0, len(items))
		for _, it := range items {
			nativeItems = append(nativeItems, map[string]interface{}{
				"product_id": it.ProductID,
				"name":       it.Name,
				"quantity":   int32(it.Quantity),
				"unit_price": it.UnitPrice.String(),
			})
		}
		out = append(out, map[string]interface{}{
			"id":        o.ID,
			"buyer":     o.Buyer,
			"placed_at": o.PlacedAt.UnixMilli(),
			"items":     nativeItems,
		})
	}
	return map[string]interface{}{
		"version":  int32(SnapshotVersion),
		"saved_at": savedAt.UnixMilli(),
		"orders":   out,
	}
}

// LedgerFromNative maps a decoded LedgerSnapshot record back to orders.
func LedgerFromNative(native map[string]interface{}) ([]*order.Order, error) {
	if err := checkVersion(native); err != nil {
		return nil, err
	}
	raw, err := array(native, "orders")
	if err != nil {
		return nil, err
	}
	orders := make([]*order.Order, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("order %d: unexpected type %T", i, r)
		}
		o, err := orderFromNative(m)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func orderFromNative(m map[string]interface{}) (*order.Order, error) {
	id, err := str(m, "id")
	if err != nil {
		return nil, err
	}
	buyer, err := str(m, "buyer")
	if err != nil {
		return nil, err
	}
	placedAt, err := int64Field(m, "placed_at")
	if err != nil {
		return nil, err
	}
	rawItems, err := array(m, "items")
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(rawItems))
	for i, r := range rawItems {
		im, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("item %d: unexpected type %T", i, r)
		}
		pid, err := str(im, "product_id")
		if err != nil {
			return nil, err
		}
		name, err := str(im, "name")
		if err != nil {
			return nil, err
		}
		qty, err := int32Field(im, "quantity")
		if err != nil {
			return nil, err
		}
		priceStr, err := str(im, "unit_price")
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("item %d: unit_price: %w", i, err)
		}
		items = append(items, order.Item{ProductID: pid, Name: name, Quantity: int(qty), UnitPrice: price})
	}

	return order.Restore(id, buyer, time.UnixMilli(placedAt), items), nil
}

func checkVersion(m map[string]interface{}) error {
	v, err := int32Field(m, "version")
	if err != nil {
		return err
	}
	if v != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", v)
	}
	return nil
}

func str(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, m[key])
	}
	return v, nil
}

func int32Field(m map[string]interface{}, key string) (int32, error) {
	v, ok := m[key].(int32)
	if !ok {
		return 0, fmt.Errorf("field %q: expected int, got %T", key, m[key])
	}
	return v, nil
}

func int64Field(m map[string]interface{}, key string) (int64, error) {
	v, ok := m[key].(int64)
	if !ok {
		return 0, fmt.Errorf("field %q: expected long, got %T", key, m[key])
	}
	return v, nil
}

func array(m map[string]interface{}, key string) ([]interface{}, error) {
	v, ok := m[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q: expected array, got %T", key, m[key])
	}
	return v, nil
}
