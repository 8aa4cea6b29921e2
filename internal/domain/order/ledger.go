package order

// Ledger is the ordered history of placed orders. It only grows.
type Ledger struct {
	orders []*Order
}

func NewLedger(orders ...*Order) *Ledger {
	l := &Ledger{orders: make([]*Order, 0, len(orders))}
	for _, o := range orders {
		if o != nil {
			l.orders = append(l.orders, o)
		}
	}
	return l
}

func (l *Ledger) Append(o *Order) {
	l.orders = append(l.orders, o)
}

// Orders returns a copy of the order list; the orders themselves are immutable.
func (l *Ledger) Orders() []*Order {
	out := make([]*Order, len(l.orders))
	copy(out, l.orders)
	return out
}

func (l *Ledger) Len() int { return len(l.orders) }

func (l *Ledger) Find(id string) (*Order, bool) {
	for _, o := range l.orders {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// IDs lists order ids in ledger order.
func (l *Ledger) IDs() []string {
	ids := make([]string, len(l.orders))
	for i, o := range l.orders {
		ids[i] = o.ID
	}
	return ids
}
