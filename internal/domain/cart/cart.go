package cart

import "math"

// MaxQuantity is the largest quantity any line can hold, whatever the
// configured cap. Snapshots store quantities as 32-bit ints.
const MaxQuantity = math.MaxInt32

// LineItem pairs a product id with a quantity. A cart holds at most one
// line per product id.
type LineItem struct {
	ProductID string
	Quantity  int
}

// Cart is the mutable, insertion-ordered working set of line items.
// It is not safe for concurrent use; callers serialise access.
type Cart struct {
	lines  []LineItem
	maxQty int
}

// New returns an empty cart. maxQty caps any single line; 0 leaves only the
// MaxQuantity ceiling.
func New(maxQty int) *Cart {
	return &Cart{maxQty: maxQty}
}

// Restore rebuilds a cart from snapshot lines. Lines with an empty id or a
// non-positive quantity are dropped and duplicate ids are merged into the
// first occurrence, so the result always satisfies the cart invariants.
func Restore(maxQty int, lines []LineItem) *Cart {
	c := New(maxQty)
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i := c.index(l.ProductID); i >= 0 {
			if l.Quantity <= MaxQuantity-c.lines[i].Quantity {
				c.lines[i].Quantity += l.Quantity
			}
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Add appends a new line or accumulates qty onto the existing line.
func (c *Cart) Add(productID string, qty int) error {
	if productID == "" {
		return ErrMissingProduct
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if i := c.index(productID); i >= 0 {
		if qty > MaxQuantity-c.lines[i].Quantity {
			return ErrQuantityLimit
		}
		merged := c.lines[i].Quantity + qty
		if c.exceeds(merged) {
			return ErrQuantityLimit
		}
		c.lines[i].Quantity = merged
		return nil
	}
	if c.exceeds(qty) {
		return ErrQuantityLimit
	}
	c.lines = append(c.lines, LineItem{ProductID: productID, Quantity: qty})
	return nil
}

// Remove deletes the line for productID. Absent ids are ignored.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// UpdateQuantity sets the quantity of an existing line; qty <= 0 removes it.
// It reports whether a line with that id existed.
func (c *Cart) UpdateQuantity(productID string, qty int) (bool, error) {
	i := c.index(productID)
	if i < 0 {
		return false, nil
	}
	if qty <= 0 {
		c.Remove(productID)
		return true, nil
	}
	if c.exceeds(qty) {
		return true, ErrQuantityLimit
	}
	c.lines[i].Quantity = qty
	return true, nil
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) MaxLineQuantity() int { return c.maxQty }

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) exceeds(qty int) bool {
	if qty > MaxQuantity {
		return true
	}
	return c.maxQty > 0 && qty > c.maxQty
}
