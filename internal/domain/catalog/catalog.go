package catalog

import "strings"

// Catalog is the read-only product lookup the cart core consumes.
type Catalog interface {
	Lookup(id string) (Product, bool)
	ListAll() []Product
}

// Searcher is implemented by catalogs that support free-text search.
type Searcher interface {
	Search(query string) ([]Product, error)
}

// InMemory is an ordered, id-unique Catalog.
type InMemory struct {
	products []Product
	byID     map[string]int
}

func NewInMemory(products []Product) (*InMemory, error) {
	c := &InMemory{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if p.ID == "" || p.Price.IsNegative() {
			return nil, ErrInvalidProduct
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, ErrDuplicateID
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func (c *InMemory) Lookup(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *InMemory) ListAll() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Search matches query case-insensitively against product names and ids.
func (c *InMemory) Search(query string) ([]Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}
	found := make([]Product, 0)
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.ID), q) {
			found = append(found, p)
		}
	}
	return found, nil
}
